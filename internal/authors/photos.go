package authors

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Name tokens this short are initials and never used for matching.
const minMatchTokenLength = 3

type PhotoMatch struct {
	Filename   string
	SourcePath string
}

// MatchAuthorPhoto looks for a portrait of name among candidate filenames.
// Strategies run in order over all candidates and the first hit wins:
// the full name, then the surname, then any other name token.
// index maps filenames to their path relative to the export root.
func MatchAuthorPhoto(name string, candidates []string, index map[string]string) (PhotoMatch, bool) {
	nameTokens := tokens(fold(NormalizeName(name)))
	if len(nameTokens) == 0 || len(candidates) == 0 {
		return PhotoMatch{}, false
	}
	// A name made of initials only has nothing long enough to match on
	if !hasMatchableToken(nameTokens) {
		return PhotoMatch{}, false
	}

	type stem struct {
		filename string
		compact  string
		tokens   []string
	}
	stems := make([]stem, 0, len(candidates))
	for _, c := range candidates {
		base := fold(strings.TrimSuffix(c, filepath.Ext(c)))
		toks := tokens(base)
		stems = append(stems, stem{filename: c, compact: strings.Join(toks, ""), tokens: toks})
	}

	found := func(f stem) (PhotoMatch, bool) {
		return PhotoMatch{Filename: f.filename, SourcePath: index[f.filename]}, true
	}

	full := strings.Join(nameTokens, "")
	for _, s := range stems {
		if s.compact != "" && strings.Contains(s.compact, full) {
			return found(s)
		}
	}

	surname := nameTokens[len(nameTokens)-1]
	if utf8.RuneCountInString(surname) >= minMatchTokenLength {
		for _, s := range stems {
			if strings.Contains(s.compact, surname) {
				return found(s)
			}
		}
	}

	for _, tok := range nameTokens[:len(nameTokens)-1] {
		if utf8.RuneCountInString(tok) < minMatchTokenLength {
			continue
		}
		for _, s := range stems {
			for _, st := range s.tokens {
				if st == tok {
					return found(s)
				}
			}
		}
	}

	return PhotoMatch{}, false
}

func hasMatchableToken(toks []string) bool {
	for _, t := range toks {
		if utf8.RuneCountInString(t) >= minMatchTokenLength {
			return true
		}
	}
	return false
}
