// Package authors turns the raw byline strings of extracted articles into
// distinct authors, matches their portrait photos and stores them.
package authors

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Comma, ampersand, or the whole words "en" / "and"
	separatorPattern = regexp.MustCompile(`\s*[,&]\s*|\s+(?:en|and)\s+`)
	prefixPattern    = regexp.MustCompile(`(?i)^(?:door:|tekst:|by\s)\s*`)
)

// ParseAuthorNames splits byline strings into single names. Exact repeats
// across the whole input are dropped; first-seen order is kept.
func ParseAuthorNames(raw []string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range raw {
		for _, piece := range separatorPattern.Split(r, -1) {
			piece = strings.TrimSpace(piece)
			if piece == "" || seen[piece] {
				continue
			}
			seen[piece] = true
			names = append(names, piece)
		}
	}
	return names
}

// NormalizeName strips byline prefixes and trailing punctuation and
// collapses whitespace. NormalizeName(NormalizeName(x)) == NormalizeName(x).
func NormalizeName(name string) string {
	for {
		next := normalizeOnce(name)
		if next == name {
			return next
		}
		name = next
	}
}

func normalizeOnce(name string) string {
	s := strings.TrimSpace(name)
	s = prefixPattern.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".,")
	return strings.Join(strings.Fields(s), " ")
}

// fold lowercases s and removes diacritics so "Müller" matches "muller.jpg".
func fold(s string) string {
	// Chained transformers keep state, so each call builds its own
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokens splits a folded string on anything that is not a letter or digit.
func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
