package indesign

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Matches "magazine.html", "magazine-3.html", "Magazine-12.xhtml"
var spreadFilePattern = regexp.MustCompile(`(?i)^(.+?)(?:-(\d+))?\.(x?html?)$`)

type spreadFile struct {
	name  string
	stem  string
	index int
}

// Loader enumerates spreads and resources of an export directory.
type Loader struct {
	Workers  int
	Metadata MetadataExtractor
	Images   ImageClassifier
}

// NewLoader creates a loader reading spreads with the given number of workers.
// metadata may be nil, in which case edition metadata is left empty.
func NewLoader(workers int, metadata MetadataExtractor) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{
		Workers:  workers,
		Metadata: metadata,
		Images:   DefaultImageClassifier(),
	}
}

// Load reads the export at root. A missing or unreadable root is the only
// error returned; individual spread failures end up in Export.Errors.
func (l *Loader) Load(ctx context.Context, root string) (*Export, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExportRootMissing, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrExportRootMissing, root)
	}

	files, errs, err := FindSpreadFiles(root)
	if err != nil {
		return nil, err
	}

	export := &Export{Root: root, Errors: errs}

	spreads, readErrs := l.readSpreads(ctx, root, files)
	export.Spreads = spreads
	export.Errors = append(export.Errors, readErrs...)

	images, imageErrs := l.Images.Index(root)
	export.Images = images
	export.Errors = append(export.Errors, imageErrs...)

	if l.Metadata != nil {
		md, err := l.Metadata.Extract(root)
		if err != nil {
			// A miss means "no update", not a failed load
			log.Printf("[EXTRACT] Edition metadata not found in %s: %v", root, err)
		} else {
			export.Metadata = md
		}
	}

	log.Printf("[EXTRACT] Loaded %d spreads and %d images from %s (%d errors)",
		len(export.Spreads), len(export.Images.Files), root, len(export.Errors))

	return export, nil
}

// FindSpreadFiles lists spread files at the export root ordered by spread
// index. Files that do not belong to the dominant naming stem, or that
// repeat an index, are returned as error messages.
func FindSpreadFiles(root string) ([]spreadFile, []string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrExportRootMissing, root, err)
	}

	var candidates []spreadFile
	stemCounts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := spreadFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		sf := spreadFile{name: entry.Name(), stem: m[1]}
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			sf.index = n
		}
		candidates = append(candidates, sf)
		stemCounts[strings.ToLower(sf.stem)]++
	}

	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoSpreads, root)
	}

	stem := dominantStem(stemCounts)

	var errs []string
	var files []spreadFile
	seen := make(map[int]string)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].index != candidates[j].index {
			return candidates[i].index < candidates[j].index
		}
		return candidates[i].name < candidates[j].name
	})
	for _, c := range candidates {
		if strings.ToLower(c.stem) != stem {
			errs = append(errs, fmt.Sprintf("spread %s: does not belong to export %q, skipped", c.name, stem))
			continue
		}
		if prev, dup := seen[c.index]; dup {
			errs = append(errs, fmt.Sprintf("spread %s: index %d already taken by %s, skipped", c.name, c.index, prev))
			continue
		}
		seen[c.index] = c.name
		files = append(files, c)
	}

	return files, errs, nil
}

func dominantStem(counts map[string]int) string {
	best := ""
	bestCount := -1
	for stem, n := range counts {
		if n > bestCount || (n == bestCount && stem < best) {
			best = stem
			bestCount = n
		}
	}
	return best
}

// readSpreads reads and inspects spread files concurrently. Each worker owns
// one file; results are written into a slot per file so no locking is needed.
func (l *Loader) readSpreads(ctx context.Context, root string, files []spreadFile) ([]Spread, []string) {
	type slot struct {
		spread Spread
		err    error
	}
	slots := make([]slot, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}
			s, err := readSpread(filepath.Join(root, f.name), f)
			slots[i] = slot{spread: s, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var spreads []Spread
	var errs []string
	for i, s := range slots {
		if s.err != nil {
			errs = append(errs, fmt.Sprintf("spread %s: %v", files[i].name, s.err))
			continue
		}
		spreads = append(spreads, s.spread)
	}
	sort.SliceStable(spreads, func(i, j int) bool { return spreads[i].Index < spreads[j].Index })
	return spreads, errs
}

func readSpread(path string, f spreadFile) (Spread, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spread{}, fmt.Errorf("failed to read: %w", err)
	}
	markup := string(data)

	start, end := DefaultPageRange(f.index)
	if hintStart, hintEnd, ok := PageHints(markup); ok {
		start, end = hintStart, hintEnd
	}

	return Spread{
		Filename:  f.name,
		Index:     f.index,
		PageStart: start,
		PageEnd:   end,
		Markup:    markup,
	}, nil
}

// DefaultPageRange returns the page range of a spread when its markup
// carries no page hints. Spread 0 is the single cover page.
func DefaultPageRange(index int) (int, int) {
	if index <= 0 {
		return 1, 1
	}
	return index * 2, index*2 + 1
}
