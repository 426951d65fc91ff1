// Package segmenter splits the classified element stream of an edition
// into articles.
//
// A title element opens an article and everything up to the next title
// belongs to it, so two adjacent titles are two articles. A title laid out
// over several lines arrives as one element with literal line breaks.
// Elements before the first title are layout decoration and are dropped.
package segmenter

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/spread"
)

const defaultWorkers = 4

// Cover holds the cover texts found on any spread.
type Cover struct {
	Title   string
	Chapeau string
}

type Result struct {
	Articles []ExtractedArticle
	Cover    Cover
	// Errors lists articles that could not be built. They are skipped.
	Errors []string
	// Orphaned counts elements discarded before the first title.
	Orphaned int
}

type state int

const (
	stateIdle state = iota
	stateInArticle
)

// chunk is the element run of one article after its title.
type chunk struct {
	title    spread.Title
	elements []spread.Element
}

type Segmenter struct {
	workers int
	build   func(chunk, map[int]indesign.Spread) (ExtractedArticle, error)
}

func New(workers int) *Segmenter {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Segmenter{workers: workers, build: buildArticle}
}

// Segment walks elements in stream order. spreads supply page ranges.
func (s *Segmenter) Segment(ctx context.Context, spreads []indesign.Spread, elements []spread.Element) Result {
	var result Result
	chunks := s.split(elements, &result)

	if result.Orphaned > 0 {
		log.Printf("[EXTRACT] Discarded %d elements before the first title", result.Orphaned)
	}

	bySpread := make(map[int]indesign.Spread, len(spreads))
	for _, sp := range spreads {
		bySpread[sp.Index] = sp
	}

	type slot struct {
		article ExtractedArticle
		err     error
	}
	slots := make([]slot, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slots[i].err = fmt.Errorf("panic: %v", r)
				}
			}()
			if err := gctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}
			a, err := s.build(c, bySpread)
			slots[i] = slot{article: a, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, sl := range slots {
		if sl.err != nil {
			msg := fmt.Sprintf("article %d (%q, spread %d): %v", i+1, chunks[i].title.Text, chunks[i].title.SpreadIndex(), sl.err)
			log.Printf("[EXTRACT] Skipping %s", msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.Articles = append(result.Articles, sl.article)
	}

	return result
}

func (s *Segmenter) split(elements []spread.Element, result *Result) []chunk {
	var chunks []chunk
	st := stateIdle

	for _, el := range elements {
		switch e := el.(type) {
		case spread.CoverTitle:
			result.Cover.Title = appendLine(result.Cover.Title, e.Text)
			continue
		case spread.CoverChapeau:
			result.Cover.Chapeau = appendLine(result.Cover.Chapeau, e.Text)
			continue
		case spread.Title:
			// Every title closes the open article and starts the next
			chunks = append(chunks, chunk{title: e})
			st = stateInArticle
			continue
		}

		if st == stateIdle {
			result.Orphaned++
			continue
		}
		last := &chunks[len(chunks)-1]
		last.elements = append(last.elements, el)
	}

	return chunks
}

type builder struct {
	article     ExtractedArticle
	spreads     map[int]bool
	blocks      int
	lastImage   string
	prev        spread.Element
	chapeauSeen bool
}

func buildArticle(c chunk, spreads map[int]indesign.Spread) (ExtractedArticle, error) {
	b := &builder{
		article: ExtractedArticle{
			Captions:       make(map[string]string),
			ImagePositions: make(map[string]int),
		},
		spreads: make(map[int]bool),
	}

	b.spreads[c.title.SpreadIndex()] = true
	if strings.TrimSpace(c.title.Text) == "" {
		return ExtractedArticle{}, fmt.Errorf("empty title")
	}
	b.article.Title = c.title.Text

	for _, el := range c.elements {
		b.spreads[el.SpreadIndex()] = true
		b.add(el)
		b.prev = el
	}

	b.finish(spreads)
	return b.article, nil
}

func (b *builder) add(el spread.Element) {
	a := &b.article
	switch e := el.(type) {
	case spread.Chapeau:
		if !b.chapeauSeen {
			a.Chapeau = e.Text
			b.chapeauSeen = true
			return
		}
		// A second intro block reads as body text
		a.BodyParagraphs = append(a.BodyParagraphs, BodyParagraph{Kind: spread.KindParagraph, Text: e.Text})
		b.blocks++
	case spread.Body:
		a.BodyParagraphs = append(a.BodyParagraphs, BodyParagraph{Kind: e.Kind, Text: e.Text})
		b.blocks++
	case spread.Category:
		if a.Category == "" {
			a.Category = e.Text
		}
	case spread.Author:
		a.AuthorNames = append(a.AuthorNames, e.Text)
	case spread.AuthorBio:
		a.AuthorBio = appendLine(a.AuthorBio, e.Text)
	case spread.IntroVerse:
		a.IntroVerse = appendLine(a.IntroVerse, e.Text)
	case spread.Sidebar:
		if _, ok := b.prev.(spread.Sidebar); ok && len(a.Sidebars) > 0 {
			last := &a.Sidebars[len(a.Sidebars)-1]
			last.Text = appendLine(last.Text, e.Text)
			return
		}
		a.Sidebars = append(a.Sidebars, Sidebar{Text: e.Text, Position: len(a.BodyParagraphs)})
		b.blocks++
	case spread.Image:
		if _, seen := a.ImagePositions[e.Filename]; !seen {
			a.ReferencedImages = append(a.ReferencedImages, e.Filename)
			a.ImagePositions[e.Filename] = b.blocks
		}
		b.lastImage = e.Filename
	case spread.Caption:
		switch b.prev.(type) {
		case spread.Image:
			if _, taken := a.Captions[b.lastImage]; !taken {
				a.Captions[b.lastImage] = e.Text
			}
		case spread.Caption:
			// A caption set over several paragraphs
			if b.lastImage != "" {
				if existing, ok := a.Captions[b.lastImage]; ok {
					a.Captions[b.lastImage] = appendLine(existing, e.Text)
				}
			}
		}
	case spread.Unclassified:
		// Unstyled text carries no role and is left out of the article
	}
}

func (b *builder) finish(spreads map[int]indesign.Spread) {
	a := &b.article

	for idx := range b.spreads {
		a.SourceSpreadIndexes = append(a.SourceSpreadIndexes, idx)
	}
	sort.Ints(a.SourceSpreadIndexes)

	for i, idx := range a.SourceSpreadIndexes {
		start, end := indesign.DefaultPageRange(idx)
		if sp, ok := spreads[idx]; ok {
			start, end = sp.PageStart, sp.PageEnd
		}
		if i == 0 || start < a.PageStart {
			a.PageStart = start
		}
		if i == 0 || end > a.PageEnd {
			a.PageEnd = end
		}
	}

	texts := []string{a.Chapeau}
	for _, p := range a.BodyParagraphs {
		texts = append(texts, p.Text)
	}
	a.Lifespan = ExtractLifespan(texts...)
	// The intro verse is the most likely place for a citation
	a.VerseReference = ExtractVerseReference(append([]string{a.IntroVerse}, texts...)...)

	switch {
	case a.Chapeau != "":
		a.Excerpt = MakeExcerpt(a.Chapeau)
	default:
		for _, p := range a.BodyParagraphs {
			if p.Kind == spread.KindParagraph {
				a.Excerpt = MakeExcerpt(p.Text)
				break
			}
		}
	}
}

func appendLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
