package content

import (
	"html"
	"strings"

	"github.com/mrlokans/editions/internal/segmenter"
	"github.com/mrlokans/editions/internal/spread"
)

// RenderBody writes extracted body paragraphs and sidebars as the stored
// article markup that TransformToContentBlocks reads back.
func RenderBody(paragraphs []segmenter.BodyParagraph, sidebars []segmenter.Sidebar) string {
	var b strings.Builder
	next := 0
	writeSidebarsAt := func(pos int) {
		for next < len(sidebars) && sidebars[next].Position <= pos {
			b.WriteString(`<aside class="kader">`)
			for _, line := range strings.Split(sidebars[next].Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					b.WriteString("<p>" + html.EscapeString(line) + "</p>")
				}
			}
			b.WriteString("</aside>\n")
			next++
		}
	}

	for i, p := range paragraphs {
		writeSidebarsAt(i)
		text := html.EscapeString(p.Text)
		switch p.Kind {
		case spread.KindSubheading:
			b.WriteString("<h3>" + text + "</h3>\n")
		case spread.KindStreamer:
			b.WriteString("<blockquote>" + text + "</blockquote>\n")
		default:
			b.WriteString("<p>" + text + "</p>\n")
		}
	}
	writeSidebarsAt(len(paragraphs) + len(sidebars))

	return b.String()
}

// SortOrderFor converts the number of body blocks published before an
// image into the image's sort order: the index of the block it follows.
func SortOrderFor(blocksBefore int) int {
	if blocksBefore <= 1 {
		return 0
	}
	return blocksBefore - 1
}
