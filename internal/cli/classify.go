package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mrlokans/editions/internal/entrypoint"
	"github.com/mrlokans/editions/internal/importers"
	"github.com/mrlokans/editions/internal/styles"
)

// ClassifyCommand prints how the style classes of an export map to roles,
// for tuning a role table.
type ClassifyCommand struct {
	Dir       string
	RolesPath string
	JSON      bool

	Out io.Writer
}

func NewClassifyCommand() *ClassifyCommand {
	return &ClassifyCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ClassifyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)

	fs.StringVar(&cmd.Dir, "dir", "", "InDesign web export directory (required)")
	fs.StringVar(&cmd.RolesPath, "roles", "", "YAML style role table, empty uses the built-in table")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the analysis as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s classify -dir <export> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show the role assigned to every style class of an export.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
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

type classifyResult struct {
	Roles        map[styles.Role][]string `json:"roles"`
	Unclassified []string                 `json:"unclassified"`
}

// Run executes the classification
func (cmd *ClassifyCommand) Run(ctx context.Context) error {
	absDir, err := filepath.Abs(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for export: %w", err)
	}

	table, err := entrypoint.LoadStyleTable(cmd.RolesPath)
	if err != nil {
		return err
	}

	ext, err := importers.NewExtractor(1, table).Extract(ctx, absDir)
	if err != nil {
		return err
	}
	analysis := ext.Analysis

	if cmd.JSON {
		unclassified := analysis.Unclassified
		if unclassified == nil {
			unclassified = []string{}
		}
		return writeJSON(cmd.Out, classifyResult{Roles: analysis.Roles, Unclassified: unclassified})
	}

	fmt.Fprintf(cmd.Out, "🎨 %d style classes in %s\n\n", len(ext.ClassNames), absDir)
	for _, role := range styles.Roles {
		classes := analysis.Classes(role)
		if len(classes) == 0 {
			continue
		}
		fmt.Fprintf(cmd.Out, "%-14s %v\n", role, classes)
	}
	if len(analysis.Unclassified) > 0 {
		fmt.Fprintf(cmd.Out, "\n⚠️  %d without a role:\n", len(analysis.Unclassified))
		for _, c := range analysis.Unclassified {
			fmt.Fprintf(cmd.Out, "  - %s\n", c)
		}
	}
	return nil
}

func describeMetadata(number *int, date *time.Time) string {
	s := ""
	if number != nil {
		s = "nr. " + strconv.Itoa(*number)
	}
	if date != nil {
		if s != "" {
			s += ", "
		}
		s += date.Format("2006-01-02")
	}
	return s
}
