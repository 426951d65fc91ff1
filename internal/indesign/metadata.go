package indesign

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var errMetadataNotFound = errors.New("no edition number or date on cover spread")

var (
	// "Editie 12", "nummer 3", "Nr. 7", "uitgave: 41"
	editionNumberPattern = regexp.MustCompile(`(?i)\b(?:editie|nummer|nr\.?|uitgave)\s*:?\s*(\d{1,4})\b`)
	// "12 maart 2025"
	editionDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december)\s+(\d{4})\b`)

	dutchMonths = map[string]time.Month{
		"januari": time.January, "februari": time.February, "maart": time.March,
		"april": time.April, "mei": time.May, "juni": time.June,
		"juli": time.July, "augustus": time.August, "september": time.September,
		"oktober": time.October, "november": time.November, "december": time.December,
	}
)

// SpreadMetadataExtractor reads the edition number and date from the text
// of the cover spread (spread 0).
type SpreadMetadataExtractor struct{}

func NewSpreadMetadataExtractor() *SpreadMetadataExtractor {
	return &SpreadMetadataExtractor{}
}

func (e *SpreadMetadataExtractor) Extract(exportRoot string) (EditionMetadata, error) {
	files, _, err := FindSpreadFiles(exportRoot)
	if err != nil {
		return EditionMetadata{}, err
	}
	if len(files) == 0 || files[0].index != 0 {
		return EditionMetadata{}, errMetadataNotFound
	}

	data, err := os.ReadFile(filepath.Join(exportRoot, files[0].name))
	if err != nil {
		return EditionMetadata{}, fmt.Errorf("failed to read cover spread: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return EditionMetadata{}, fmt.Errorf("failed to parse cover spread: %w", err)
	}

	md := ParseEditionMetadata(doc.Text())
	if md.Number == nil && md.Date == nil {
		return EditionMetadata{}, errMetadataNotFound
	}
	return md, nil
}

// ParseEditionMetadata finds an edition number and a Dutch long-form date in text.
func ParseEditionMetadata(text string) EditionMetadata {
	var md EditionMetadata

	if m := editionNumberPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			md.Number = &n
		}
	}

	if m := editionDatePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month := dutchMonths[strings.ToLower(m[2])]
		if day >= 1 && day <= 31 {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			// Reject overflow like "31 februari" rolling into March
			if d.Day() == day {
				md.Date = &d
			}
		}
	}

	return md
}
