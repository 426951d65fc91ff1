// Package spread turns spread markup into a stream of classified elements.
package spread

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/styles"
)

const textSelector = "p, h1, h2, h3, h4, h5, h6, li, figcaption"

// Node is a text-bearing element or an image reference in document order.
type Node struct {
	// Classes are the element's own classes followed by those of its
	// descendant spans.
	Classes []string
	Text    string
	// Image is set for <img> nodes only.
	Image string
}

// Document is one parsed spread.
type Document struct {
	Spread int
	Nodes  []Node
}

// Parse extracts text and image nodes from a spread's markup.
func Parse(s indesign.Spread) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.Markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse spread %d: %w", s.Index, err)
	}

	d := &Document{Spread: s.Index}
	doc.Find(textSelector + ", img").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "img" {
			if name := imageFilename(sel.AttrOr("src", "")); name != "" {
				d.Nodes = append(d.Nodes, Node{Image: name})
			}
			return
		}
		// Nested text elements are part of their parent's text
		if sel.ParentsFiltered(textSelector).Length() > 0 {
			return
		}
		text := nodeText(sel.Nodes[0])
		if text == "" {
			return
		}
		d.Nodes = append(d.Nodes, Node{Classes: selectionClasses(sel), Text: text})
	})

	return d, nil
}

// ParseAll parses spreads concurrently. Spreads that fail to parse are
// reported and left out; the result stays in spread order.
func ParseAll(ctx context.Context, spreads []indesign.Spread, workers int) ([]*Document, []string) {
	docs := make([]*Document, len(spreads))
	errs := make([]error, len(spreads))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range spreads {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			docs[i], errs[i] = Parse(s)
			return nil
		})
	}
	_ = g.Wait()

	var out []*Document
	var messages []string
	for i := range spreads {
		if errs[i] != nil {
			messages = append(messages, errs[i].Error())
			continue
		}
		out = append(out, docs[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Spread < out[j].Spread })
	return out, messages
}

// ClassNames returns the distinct class names seen on text nodes.
func ClassNames(docs []*Document) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range docs {
		for _, n := range d.Nodes {
			for _, c := range n.Classes {
				if !seen[c] {
					seen[c] = true
					names = append(names, c)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

// Elements concatenates the documents into one classified stream.
func Elements(docs []*Document, analysis styles.StyleAnalysis) []Element {
	var out []Element
	for _, d := range docs {
		for _, n := range d.Nodes {
			out = append(out, classify(d.Spread, n, analysis))
		}
	}
	return out
}

func classify(spreadIndex int, n Node, analysis styles.StyleAnalysis) Element {
	pos := Pos{Spread: spreadIndex}
	if n.Image != "" {
		return Image{Pos: pos, Filename: n.Image}
	}

	var role styles.Role
	var found bool
	for _, c := range n.Classes {
		if role, found = analysis.RoleOf(c); found {
			break
		}
	}
	if !found {
		class := ""
		if len(n.Classes) > 0 {
			class = n.Classes[0]
		}
		return Unclassified{Pos: pos, Class: class, Text: n.Text}
	}

	switch role {
	case styles.RoleTitle:
		return Title{Pos: pos, Text: n.Text}
	case styles.RoleChapeau:
		return Chapeau{Pos: pos, Text: n.Text}
	case styles.RoleBody:
		return Body{Pos: pos, Kind: KindParagraph, Text: n.Text}
	case styles.RoleSubheading:
		return Body{Pos: pos, Kind: KindSubheading, Text: n.Text}
	case styles.RoleStreamer:
		return Body{Pos: pos, Kind: KindStreamer, Text: n.Text}
	case styles.RoleAuthor:
		return Author{Pos: pos, Text: n.Text}
	case styles.RoleCategory:
		return Category{Pos: pos, Text: n.Text}
	case styles.RoleSidebar:
		return Sidebar{Pos: pos, Text: n.Text}
	case styles.RoleCaption:
		return Caption{Pos: pos, Text: n.Text}
	case styles.RoleCoverTitle:
		return CoverTitle{Pos: pos, Text: n.Text}
	case styles.RoleCoverChapeau:
		return CoverChapeau{Pos: pos, Text: n.Text}
	case styles.RoleIntroVerse:
		return IntroVerse{Pos: pos, Text: n.Text}
	case styles.RoleAuthorBio:
		return AuthorBio{Pos: pos, Text: n.Text}
	}
	return Unclassified{Pos: pos, Class: n.Classes[0], Text: n.Text}
}

func selectionClasses(sel *goquery.Selection) []string {
	var classes []string
	seen := make(map[string]bool)
	add := func(attr string) {
		for _, c := range strings.Fields(attr) {
			if !seen[c] {
				seen[c] = true
				classes = append(classes, c)
			}
		}
	}
	add(sel.AttrOr("class", ""))
	sel.Find("span[class]").Each(func(_ int, span *goquery.Selection) {
		add(span.AttrOr("class", ""))
	})
	return classes
}

// nodeText flattens an element's text. <br> becomes a hard line break;
// any other whitespace run becomes a single space.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.Map(func(r rune) rune {
				if unicode.IsSpace(r) {
					return ' '
				}
				return r
			}, n.Data))
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteByte('\n')
				return
			}
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func imageFilename(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if u, err := url.Parse(src); err == nil {
		src = u.Path
	} else if unescaped, err := url.PathUnescape(src); err == nil {
		src = unescaped
	}
	name := path.Base(src)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
