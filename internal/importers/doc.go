// Package importers turns an uploaded edition export into stored editions,
// articles and authors.
//
// # Architecture
//
// A run has two halves:
//
//	Export dir → Loader → Spreads → Documents → StyleAnalysis → Elements → Segmenter → Articles → Authors
//	                                                                            (Extractor.Extract)
//
//	Extraction → Edition row → Articles + images → Authors + relations → Edition status
//	                                                  (Pipeline.Persist)
//
// Extraction never touches the database, so the CLI can dry-run it and the
// classify command can print the style analysis without side effects.
//
// # Errors
//
// Only a missing or unreadable export root (indesign.ErrExportRootMissing)
// and the absence of any spread (indesign.ErrNoSpreads) abort a run, as do
// failures to create or finish the edition row. Everything else is
// collected into RunResult.Errors and RunResult.Warnings and the run
// completes with status completed_with_errors.
//
// # Example Usage
//
//	extractor := importers.NewExtractor(4, styles.DefaultTable())
//	pipeline := importers.NewPipeline(extractor, importers.Dependencies{
//		Editions: editionsRepo,
//		Articles: articlesRepo,
//		Authors:  authorsRepo,
//		Media:    publisher,
//	})
//	result, err := pipeline.Run(ctx, "/inbox/editie-12")
package importers
