package importers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/mrlokans/editions/internal/authors"
	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/segmenter"
	"github.com/mrlokans/editions/internal/spread"
	"github.com/mrlokans/editions/internal/styles"
)

// Extractor runs the database-free half of a run.
type Extractor struct {
	Loader     *indesign.Loader
	Classifier *styles.Classifier
	Segmenter  *segmenter.Segmenter
	Workers    int
}

// NewExtractor wires the stages with the given worker count and role table.
func NewExtractor(workers int, table styles.Table) *Extractor {
	return &Extractor{
		Loader:     indesign.NewLoader(workers, indesign.NewSpreadMetadataExtractor()),
		Classifier: styles.NewClassifier(table),
		Segmenter:  segmenter.New(workers),
		Workers:    workers,
	}
}

// Extraction is everything read from one export.
type Extraction struct {
	Export     *indesign.Export
	ClassNames []string
	Analysis   styles.StyleAnalysis
	Segments   segmenter.Result
	Authors    []authors.ExtractedAuthor
	// Errors collects load, parse and segmentation errors in that order.
	Errors []string
}

// Extract loads and segments the export at root. The returned error is
// always fatal for the run; every other problem is in Extraction.Errors.
func (e *Extractor) Extract(ctx context.Context, root string) (*Extraction, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	export, err := e.Loader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load export: %w", err)
	}

	ext := &Extraction{Export: export}
	ext.Errors = append(ext.Errors, export.Errors...)

	docs, parseErrs := spread.ParseAll(ctx, export.Spreads, e.Workers)
	ext.Errors = append(ext.Errors, parseErrs...)

	ext.ClassNames = spread.ClassNames(docs)
	ext.Analysis = e.Classifier.Classify(ext.ClassNames)
	if len(ext.Analysis.Unclassified) > 0 {
		log.Printf("[EXTRACT] %d style classes without a role: %v", len(ext.Analysis.Unclassified), ext.Analysis.Unclassified)
	}

	elements := spread.Elements(docs, ext.Analysis)
	ext.Segments = e.Segmenter.Segment(ctx, export.Spreads, elements)
	ext.Errors = append(ext.Errors, ext.Segments.Errors...)

	ext.Authors = authors.ExtractAuthorsFromArticles(ext.Segments.Articles, export)

	log.Printf("[EXTRACT] %s: %d articles, %d authors, %d errors",
		root, len(ext.Segments.Articles), len(ext.Authors), len(ext.Errors))

	return ext, nil
}
