package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/editions/internal/config"
	"github.com/mrlokans/editions/internal/entrypoint"
	"github.com/mrlokans/editions/internal/importers"
)

// ExtractCommand extracts one export directory into the database
type ExtractCommand struct {
	Dir          string
	DatabasePath string
	MediaDir     string
	RolesPath    string
	Workers      int
	DryRun       bool
	Verbose      bool
	JSON         bool

	Out io.Writer
}

// NewExtractCommand creates a new ExtractCommand
func NewExtractCommand() *ExtractCommand {
	return &ExtractCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ExtractCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)

	defaults := config.NewConfig()

	fs.StringVar(&cmd.Dir, "dir", "", "InDesign web export directory (required)")
	fs.StringVar(&cmd.DatabasePath, "db", defaults.Database.Path, "Path to the database file")
	fs.StringVar(&cmd.MediaDir, "media", defaults.Media.Dir, "Directory for published images, empty keeps export paths")
	fs.StringVar(&cmd.RolesPath, "roles", defaults.Extraction.StyleRolesPath, "YAML style role table, empty uses the built-in table")
	fs.IntVar(&cmd.Workers, "workers", defaults.Extraction.Workers, "Number of parallel workers")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Extract and report without writing to the database")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every article, error and warning")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the run result as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s extract -dir <export> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Extract articles and authors from an InDesign HTML export.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s extract -dir ./uploads/editie-12\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s extract -dir ./uploads/editie-12 -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Dir == "" {
		fs.Usage()
		return fmt.Errorf("-dir is required")
	}
	return nil
}

// Run executes the extraction
func (cmd *ExtractCommand) Run(ctx context.Context) error {
	absDir, err := filepath.Abs(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for export: %w", err)
	}
	cmd.Dir = absDir

	if cmd.DryRun {
		return cmd.dryRun(ctx)
	}

	cfg := config.NewConfig()
	cfg.Database.Path = cmd.DatabasePath
	cfg.Media.Dir = cmd.MediaDir
	cfg.Extraction.StyleRolesPath = cmd.RolesPath
	cfg.Extraction.Workers = cmd.Workers

	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Pipeline.Run(ctx, cmd.Dir)
	if result != nil {
		cmd.printResult(result)
	}
	return err
}

func (cmd *ExtractCommand) dryRun(ctx context.Context) error {
	table, err := entrypoint.LoadStyleTable(cmd.RolesPath)
	if err != nil {
		return err
	}

	ext, err := importers.NewExtractor(cmd.Workers, table).Extract(ctx, cmd.Dir)
	if err != nil {
		return err
	}

	if cmd.JSON {
		return cmd.writeJSON(dryRunSummary(ext))
	}

	fmt.Fprintf(cmd.Out, "📂 Export: %s (%d spreads)\n", ext.Export.Root, len(ext.Export.Spreads))
	if md := ext.Export.Metadata; md.Number != nil || md.Date != nil {
		fmt.Fprintf(cmd.Out, "🗞  Edition: %s\n", describeMetadata(md.Number, md.Date))
	}
	fmt.Fprintf(cmd.Out, "📰 %d articles, ✍️  %d authors\n", len(ext.Segments.Articles), len(ext.Authors))

	if cmd.Verbose {
		for i, a := range ext.Segments.Articles {
			fmt.Fprintf(cmd.Out, "  %2d. %s (p. %d-%d, %d paragraphs, %d images)\n",
				i+1, a.Title, a.PageStart, a.PageEnd, len(a.BodyParagraphs), len(a.ReferencedImages))
		}
		for _, a := range ext.Authors {
			photo := "no photo"
			if a.PhotoFilename != "" {
				photo = a.PhotoFilename
			}
			fmt.Fprintf(cmd.Out, "  ✍️  %s (%s, %d articles)\n", a.Name, photo, len(a.ArticleTitles))
		}
	}
	cmd.printMessages("errors", "❌", ext.Errors)

	fmt.Fprintln(cmd.Out, "\nℹ️  Dry run: nothing was written")
	return nil
}

func (cmd *ExtractCommand) printResult(r *importers.RunResult) {
	if cmd.JSON {
		_ = cmd.writeJSON(r)
		return
	}

	fmt.Fprintf(cmd.Out, "📂 Export: %s\n", r.SourceDir)
	fmt.Fprintf(cmd.Out, "💾 Edition %d: %s\n", r.EditionID, r.Status)
	fmt.Fprintf(cmd.Out, "📰 %d articles, ✍️  %d authors\n", len(r.Articles), len(r.Authors))

	if cmd.Verbose {
		for _, a := range r.Articles {
			fmt.Fprintf(cmd.Out, "  📄 [%d] %s (p. %d-%d, %d images)\n", a.ID, a.Title, a.PageStart, a.PageEnd, a.Images)
		}
		for _, a := range r.Authors {
			fmt.Fprintf(cmd.Out, "  ✍️  [%d] %s\n", a.ID, a.Name)
		}
		cmd.printMessages("warnings", "⚠️ ", r.Warnings)
	}
	cmd.printMessages("errors", "❌", r.Errors)

	if r.ReportFile != "" {
		fmt.Fprintf(cmd.Out, "📝 Report: %s\n", r.ReportFile)
	}
}

func (cmd *ExtractCommand) printMessages(label, marker string, msgs []string) {
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintf(cmd.Out, "\n%d %s:\n", len(msgs), label)
	for _, m := range msgs {
		fmt.Fprintf(cmd.Out, "  %s %s\n", marker, m)
	}
}

func (cmd *ExtractCommand) writeJSON(v any) error {
	return writeJSON(cmd.Out, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type dryRunArticle struct {
	Title      string   `json:"title"`
	PageStart  int      `json:"pageStart"`
	PageEnd    int      `json:"pageEnd"`
	Paragraphs int      `json:"paragraphs"`
	Images     []string `json:"images"`
	Authors    []string `json:"authors"`
}

type dryRunResult struct {
	SourceDir string          `json:"sourceDir"`
	Spreads   int             `json:"spreads"`
	Articles  []dryRunArticle `json:"articles"`
	Authors   []string        `json:"authors"`
	Errors    []string        `json:"errors"`
}

func dryRunSummary(ext *importers.Extraction) dryRunResult {
	out := dryRunResult{
		SourceDir: ext.Export.Root,
		Spreads:   len(ext.Export.Spreads),
		Articles:  []dryRunArticle{},
		Authors:   []string{},
		Errors:    append([]string{}, ext.Errors...),
	}
	for _, a := range ext.Segments.Articles {
		out.Articles = append(out.Articles, dryRunArticle{
			Title:      a.Title,
			PageStart:  a.PageStart,
			PageEnd:    a.PageEnd,
			Paragraphs: len(a.BodyParagraphs),
			Images:     append([]string{}, a.ReferencedImages...),
			Authors:    append([]string{}, a.AuthorNames...),
		})
	}
	for _, a := range ext.Authors {
		out.Authors = append(out.Authors, a.Name)
	}
	return out
}
