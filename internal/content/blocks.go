// Package content converts a stored article body into the ordered content
// blocks served by the read API, and renders extracted articles into that
// stored body markup.
package content

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

type BlockType string

const (
	BlockParagraph  BlockType = "paragraph"
	BlockSubheading BlockType = "subheading"
	BlockQuote      BlockType = "quote"
	BlockImage      BlockType = "image"
	BlockSidebar    BlockType = "sidebar"
)

type Block struct {
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	ImageURL string    `json:"imageUrl,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Order    int       `json:"order"`
}

// Image is an article image as stored.
type Image struct {
	URL        string
	Caption    string
	IsFeatured bool
	SortOrder  int
}

type FeaturedImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type Result struct {
	Blocks []Block
	// Warnings report tags the scanner does not know, which usually means
	// the layout export changed.
	Warnings []string
}

var textBlockTags = map[string]BlockType{
	"p":          BlockParagraph,
	"h2":         BlockSubheading,
	"h3":         BlockSubheading,
	"h4":         BlockSubheading,
	"blockquote": BlockQuote,
	"ul":         BlockParagraph,
	"ol":         BlockParagraph,
	"div":        BlockParagraph,
}

// Tags that may appear between blocks without carrying text.
var ignoredTags = map[string]bool{
	"br": true, "hr": true, "img": true, "wbr": true,
	"html": true, "head": true, "body": true,
}

var sidebarMarkers = []string{"sidebar", "kader"}

type positioned struct {
	offset int
	block  Block
}

type span struct{ start, end int }

// TransformToContentBlocks orders an article's text, sidebars and images
// the way they were published. Featured images are left out; see
// SelectFeaturedImage.
func TransformToContentBlocks(body string, images []Image) Result {
	var result Result
	toks := tokenize(body)

	sidebars, spans := findSidebars(body, toks)
	texts, warnings := findTextBlocks(body, toks, spans)
	result.Warnings = warnings

	blocks := append(sidebars, texts...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].offset < blocks[j].offset })

	var inline []Image
	for _, img := range images {
		if !img.IsFeatured {
			inline = append(inline, img)
		}
	}
	sort.SliceStable(inline, func(i, j int) bool { return inline[i].SortOrder < inline[j].SortOrder })

	next := 0
	emitImagesAt := func(pos int) {
		for next < len(inline) && clampOrder(inline[next].SortOrder) == pos {
			result.Blocks = append(result.Blocks, imageBlock(inline[next]))
			next++
		}
	}
	for i, b := range blocks {
		result.Blocks = append(result.Blocks, b.block)
		emitImagesAt(i)
	}
	// Images pointing past the last block go at the end
	for ; next < len(inline); next++ {
		result.Blocks = append(result.Blocks, imageBlock(inline[next]))
	}

	for i := range result.Blocks {
		result.Blocks[i].Order = i
	}
	return result
}

// SelectFeaturedImage returns the image flagged as featured, else the one
// with the lowest sort order.
func SelectFeaturedImage(images []Image) *FeaturedImage {
	if len(images) == 0 {
		return nil
	}
	best := -1
	for i, img := range images {
		if img.IsFeatured {
			return &FeaturedImage{URL: img.URL, Caption: img.Caption}
		}
		if best < 0 || img.SortOrder < images[best].SortOrder {
			best = i
		}
	}
	return &FeaturedImage{URL: images[best].URL, Caption: images[best].Caption}
}

func clampOrder(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func imageBlock(img Image) Block {
	return Block{Type: BlockImage, Content: img.Caption, ImageURL: img.URL, Caption: img.Caption}
}

func isSidebarOpen(t token) bool {
	if t.typ != html.StartTagToken {
		return false
	}
	if t.name == "aside" {
		return true
	}
	if t.name != "div" && t.name != "section" {
		return false
	}
	for _, m := range sidebarMarkers {
		if strings.Contains(t.class, m) {
			return true
		}
	}
	return false
}

// findSidebars returns the outermost sidebar containers and their spans.
func findSidebars(body string, toks []token) ([]positioned, []span) {
	var blocks []positioned
	var spans []span
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !isSidebarOpen(t) {
			continue
		}
		closeIdx := matchClose(toks, i)
		inner, end := body[t.end:], len(body)
		if closeIdx >= 0 {
			inner, end = body[t.end:toks[closeIdx].start], toks[closeIdx].end
		}
		spans = append(spans, span{start: t.start, end: end})
		if text := CleanHTMLContent(inner); text != "" {
			blocks = append(blocks, positioned{offset: t.start, block: Block{Type: BlockSidebar, Content: text}})
		}
		if closeIdx < 0 {
			break
		}
		i = closeIdx
	}
	return blocks, spans
}

func inSpans(offset int, spans []span) bool {
	for _, s := range spans {
		if offset >= s.start && offset < s.end {
			return true
		}
	}
	return false
}

// findTextBlocks scans the top level outside sidebars. A div holding other
// blocks is a wrapper and is scanned into; a div holding only inline
// content is a paragraph.
func findTextBlocks(body string, toks []token, sidebars []span) ([]positioned, []string) {
	var blocks []positioned
	var warnings []string
	warned := make(map[string]bool)

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if inSpans(t.start, sidebars) || t.typ == html.EndTagToken {
			continue
		}

		blockType, known := textBlockTags[t.name]
		if !known {
			if !ignoredTags[t.name] && !warned[t.name] {
				warned[t.name] = true
				warnings = append(warnings, fmt.Sprintf("unrecognized tag <%s> at offset %d", t.name, t.start))
			}
			continue
		}
		if t.typ == html.SelfClosingTagToken {
			continue
		}

		// end indexes the token after the content, resume is where the scan
		// continues; -1 means the element runs to the end of the body.
		end, limit, resume := len(toks), len(body), -1
		if inlineOnlyTags[t.name] {
			if idx, closed := inlineBlockEnd(toks, i); idx >= 0 {
				end, limit, resume = idx, toks[idx].start, idx
				if !closed {
					resume = idx - 1
				}
			}
		} else if closeIdx := matchClose(toks, i); closeIdx >= 0 {
			end, limit, resume = closeIdx, toks[closeIdx].start, closeIdx
		}
		inner := body[t.end:limit]

		if t.name == "div" && containsBlock(toks[i+1:end]) {
			continue
		}

		var text string
		if t.name == "ul" || t.name == "ol" {
			text = listText(body, toks[i+1:end], limit)
		} else {
			text = CleanHTMLContent(inner)
		}
		if text != "" {
			blocks = append(blocks, positioned{offset: t.start, block: Block{Type: blockType, Content: text}})
		}

		if resume < 0 {
			break
		}
		i = resume
	}

	return blocks, warnings
}

// Paragraphs and headings cannot hold blocks, so a missing end tag is
// implied by the next block.
var inlineOnlyTags = map[string]bool{"p": true, "h2": true, "h3": true, "h4": true}

// inlineBlockEnd returns the index of the end tag of the element at
// toks[open], or of the next block start tag when the end tag is missing.
// closed reports which one was found; -1 means neither.
func inlineBlockEnd(toks []token, open int) (idx int, closed bool) {
	name := toks[open].name
	for i := open + 1; i < len(toks); i++ {
		t := toks[i]
		if t.typ == html.EndTagToken && t.name == name {
			return i, true
		}
		if t.typ == html.StartTagToken && isBlockStart(t.name) {
			return i, false
		}
	}
	return -1, false
}

func isBlockStart(name string) bool {
	_, ok := textBlockTags[name]
	return ok || name == "aside"
}

func containsBlock(toks []token) bool {
	for _, t := range toks {
		if t.typ == html.StartTagToken && isBlockStart(t.name) {
			return true
		}
	}
	return false
}

// listText joins the cleaned text of each list item with a single space.
// An unclosed item ends where the next one starts.
func listText(body string, toks []token, limit int) string {
	var items []string
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.typ != html.StartTagToken || t.name != "li" {
			continue
		}
		end, resume := limit, len(toks)
		if closeIdx := matchClose(toks, i); closeIdx >= 0 {
			end, resume = toks[closeIdx].start, closeIdx
		} else if next := nextStart(toks, i+1, "li"); next >= 0 {
			end, resume = toks[next].start, next-1
		}
		if text := CleanHTMLContent(body[t.end:end]); text != "" {
			items = append(items, text)
		}
		i = resume
	}
	return strings.Join(items, " ")
}

func nextStart(toks []token, from int, name string) int {
	for i := from; i < len(toks); i++ {
		if toks[i].typ == html.StartTagToken && toks[i].name == name {
			return i
		}
	}
	return -1
}
