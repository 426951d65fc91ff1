package authors

import (
	"sync"

	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/segmenter"
)

// ExtractedAuthor is one distinct author of an edition.
type ExtractedAuthor struct {
	Name            string
	PhotoFilename   string
	PhotoSourcePath string
	ArticleTitles   []string
}

// Aggregator merges the authors of many articles by normalized name.
// It is safe for concurrent use.
type Aggregator struct {
	images indesign.ImageIndex

	mu     sync.Mutex
	byName map[string]*ExtractedAuthor
	order  []string
}

func NewAggregator(images indesign.ImageIndex) *Aggregator {
	return &Aggregator{
		images: images,
		byName: make(map[string]*ExtractedAuthor),
	}
}

// Add merges the authors of one article.
func (a *Aggregator) Add(article segmenter.ExtractedArticle) {
	var names []string
	for _, raw := range ParseAuthorNames(article.AuthorNames) {
		if n := NormalizeName(raw); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return
	}

	// Photo matching only reads the index, so it runs outside the lock
	matches := make([]PhotoMatch, len(names))
	for i, n := range names {
		matches[i], _ = MatchAuthorPhoto(n, a.images.AuthorPhotos, a.images.Files)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, n := range names {
		author, ok := a.byName[n]
		if !ok {
			author = &ExtractedAuthor{
				Name:            n,
				PhotoFilename:   matches[i].Filename,
				PhotoSourcePath: matches[i].SourcePath,
			}
			a.byName[n] = author
			a.order = append(a.order, n)
		}
		if !containsString(author.ArticleTitles, article.Title) {
			author.ArticleTitles = append(author.ArticleTitles, article.Title)
		}
	}
}

// Authors returns the merged authors in first-seen order.
func (a *Aggregator) Authors() []ExtractedAuthor {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]ExtractedAuthor, 0, len(a.order))
	for _, n := range a.order {
		au := *a.byName[n]
		au.ArticleTitles = append([]string(nil), au.ArticleTitles...)
		out = append(out, au)
	}
	return out
}

// ExtractAuthorsFromArticles aggregates the authors of all articles,
// matching photos from the export's author photo bucket.
func ExtractAuthorsFromArticles(articles []segmenter.ExtractedArticle, export *indesign.Export) []ExtractedAuthor {
	var images indesign.ImageIndex
	if export != nil {
		images = export.Images
	}
	agg := NewAggregator(images)
	for _, article := range articles {
		agg.Add(article)
	}
	return agg.Authors()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
