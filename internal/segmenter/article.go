package segmenter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/editions/internal/spread"
)

const excerptLength = 240

var (
	// "1923-2019", "(1923 – 2019)"
	lifespanPattern = regexp.MustCompile(`\(?\b(1\d{3}|20\d{2})\s*[-–—]\s*(1\d{3}|20\d{2})\b\)?`)
	// "*1923 †2019"
	lifespanSymbolPattern = regexp.MustCompile(`\*\s*(1\d{3}|20\d{2})\s*†\s*(1\d{3}|20\d{2})`)
	// "Johannes 3:16", "1 Korintiërs 13:4-7", "Jes. 40:31", "Psalm 23 vers 1"
	versePattern = regexp.MustCompile(`(?:[1-3]\s?)?\p{Lu}\p{Ll}+\.?\s\d{1,3}(?::|\svers\s)\d{1,3}(?:\s?[-–]\s?\d{1,3})?`)
)

type BodyParagraph struct {
	Kind spread.BodyKind
	Text string
}

// Sidebar is a boxed text placed after Position body paragraphs.
// Paragraphs of one box are separated by "\n".
type Sidebar struct {
	Text     string
	Position int
}

// ExtractedArticle is one article as found in the layout. Empty strings
// mean the field was not present.
type ExtractedArticle struct {
	Title          string
	Chapeau        string
	BodyParagraphs []BodyParagraph
	Excerpt        string
	Category       string
	Lifespan       string
	VerseReference string
	IntroVerse     string
	AuthorNames    []string
	AuthorBio      string
	Sidebars       []Sidebar

	PageStart           int
	PageEnd             int
	SourceSpreadIndexes []int

	ReferencedImages []string
	Captions         map[string]string
	// ImagePositions maps an image to the number of body blocks
	// (paragraphs and sidebars) that precede it.
	ImagePositions map[string]int
}

// ExtractLifespan finds a birth-death year range and returns it as "YYYY-YYYY".
func ExtractLifespan(texts ...string) string {
	for _, text := range texts {
		for _, p := range []*regexp.Regexp{lifespanSymbolPattern, lifespanPattern} {
			for _, m := range p.FindAllStringSubmatch(text, -1) {
				if m[1] < m[2] {
					return m[1] + "-" + m[2]
				}
			}
		}
	}
	return ""
}

// ExtractVerseReference finds the first scripture citation.
func ExtractVerseReference(texts ...string) string {
	for _, text := range texts {
		if m := versePattern.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// MakeExcerpt shortens text to at most excerptLength runes, cutting at a word
// boundary and marking the cut with an ellipsis.
func MakeExcerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:excerptLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:-") + "…"
}
