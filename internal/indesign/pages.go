package indesign

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	pageNumberClasses = []string{"paginanummer", "pagenummer", "pagenumber", "page-number", "folio"}
	digitsPattern     = regexp.MustCompile(`\d{1,4}`)
)

// PageHints scans spread markup for page markers: data-page, data-page-start
// and data-page-end attributes, and the text of page-number styled elements.
// It returns the lowest and highest page found.
func PageHints(markup string) (int, int, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return 0, 0, false
	}

	var pages []int
	doc.Find("[data-page], [data-page-start], [data-page-end]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"data-page", "data-page-start", "data-page-end"} {
			if v, ok := s.Attr(attr); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
					pages = append(pages, n)
				}
			}
		}
	})

	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class := strings.ToLower(s.AttrOr("class", ""))
		if !containsAny(class, pageNumberClasses) {
			return
		}
		text := strings.TrimSpace(s.Text())
		if m := digitsPattern.FindString(text); m != "" && m == text {
			if n, err := strconv.Atoi(m); err == nil && n > 0 {
				pages = append(pages, n)
			}
		}
	})

	if len(pages) == 0 {
		return 0, 0, false
	}

	lo, hi := pages[0], pages[0]
	for _, p := range pages[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	return lo, hi, true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
