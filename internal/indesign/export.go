// Package indesign reads a page-layout HTML export: one markup file per
// spread plus a resource folder of placed images.
//
// File naming follows the export tool: the unsuffixed file is spread 0 and
// files carrying a "-N" suffix are spread N.
//
//	magazine.html          spread 0 (cover)
//	magazine-1.html        spread 1
//	magazine-2.html        spread 2
//	magazine-web-resources/image/...
package indesign

import (
	"errors"
	"time"
)

var (
	ErrExportRootMissing = errors.New("export root missing or unreadable")
	ErrNoSpreads         = errors.New("no spread files found in export")
)

// Spread is one exported two-page layout unit.
type Spread struct {
	Filename  string
	Index     int
	PageStart int
	PageEnd   int
	Markup    string
}

// ImageIndex maps image filenames to their path relative to the export root
// and sorts every filename into exactly one bucket.
type ImageIndex struct {
	Files            map[string]string
	ArticleImages    []string
	AuthorPhotos     []string
	DecorativeImages []string
}

// Path returns the relative path of an indexed image.
func (idx ImageIndex) Path(filename string) (string, bool) {
	p, ok := idx.Files[filename]
	return p, ok
}

// IsDecorative reports whether the filename was classified as layout decoration.
func (idx ImageIndex) IsDecorative(filename string) bool {
	for _, f := range idx.DecorativeImages {
		if f == filename {
			return true
		}
	}
	return false
}

// EditionMetadata is what a MetadataExtractor could find about the edition.
// Nil fields mean "not found", never "clear the stored value".
type EditionMetadata struct {
	Number *int
	Date   *time.Time
}

// MetadataExtractor finds the edition number and date for an export.
type MetadataExtractor interface {
	Extract(exportRoot string) (EditionMetadata, error)
}

// Export is the loaded edition. Errors lists spreads and resources that
// could not be read; they are skipped, never fatal.
type Export struct {
	Root     string
	Spreads  []Spread
	Images   ImageIndex
	Metadata EditionMetadata
	Errors   []string
}
