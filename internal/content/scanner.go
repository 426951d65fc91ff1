package content

import (
	"strings"

	"golang.org/x/net/html"
)

// token is a tag of the body markup with its byte span in the source.
type token struct {
	typ   html.TokenType
	name  string
	class string
	start int
	end   int
}

// tokenize lists the tags of markup with their offsets. Text and comments
// are skipped; their bytes are still counted.
func tokenize(markup string) []token {
	z := html.NewTokenizer(strings.NewReader(markup))
	var toks []token
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return toks
		}
		// Raw must be measured before TagName, which rewrites the buffer
		size := len(z.Raw())
		start := offset
		offset += size

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, hasAttr := z.TagName()
			t := token{typ: tt, name: string(name), start: start, end: offset}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "class" {
					t.class = strings.ToLower(string(val))
				}
			}
			toks = append(toks, t)
		}
	}
}

// matchClose returns the index of the end tag balancing the start tag at
// toks[open], counting nested tags of the same name. It returns -1 when the
// element is never closed.
func matchClose(toks []token, open int) int {
	name := toks[open].name
	depth := 0
	for i := open; i < len(toks); i++ {
		t := toks[i]
		if t.name != name {
			continue
		}
		switch t.typ {
		case html.StartTagToken:
			depth++
		case html.EndTagToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var skippedTags = map[string]bool{"script": true, "style": true}

var spacingTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "aside": true, "section": true, "figcaption": true, "tr": true, "td": true,
}

// CleanHTMLContent strips tags, decodes entities and collapses whitespace.
func CleanHTMLContent(markup string) string {
	if markup == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
				continue
			}
			if spacingTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}
