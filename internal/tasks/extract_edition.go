package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/editions/internal/importers"
)

// EditionRunner runs the extraction pipeline for one export directory.
type EditionRunner interface {
	Run(ctx context.Context, root string) (*importers.RunResult, error)
}

// ExtractEditionTask extracts and stores the export found at Path.
type ExtractEditionTask struct {
	Path string `json:"path"`
}

// Config returns the queue configuration for extraction tasks. Runs are not
// retried: a fatal export error repeats on every attempt.
func (t ExtractEditionTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "extract_edition",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExtractEditionProcessor creates a processor function for ExtractEditionTask.
func ExtractEditionProcessor(runner EditionRunner) backlite.QueueProcessor[ExtractEditionTask] {
	return func(ctx context.Context, task ExtractEditionTask) error {
		if runner == nil {
			return fmt.Errorf("extraction pipeline not configured")
		}
		if task.Path == "" {
			return fmt.Errorf("extract edition: path is required")
		}

		result, err := runner.Run(ctx, task.Path)
		if err != nil {
			return fmt.Errorf("extract edition %s: %w", task.Path, err)
		}

		log.Printf("[TASK] Extracted %s into edition %d: %s (%d articles, %d authors, %d errors)",
			task.Path, result.EditionID, result.Status, len(result.Articles), len(result.Authors), len(result.Errors))
		return nil
	}
}

// NewExtractEditionQueue creates a backlite queue for extraction tasks.
func NewExtractEditionQueue(runner EditionRunner) backlite.Queue {
	return backlite.NewQueue(ExtractEditionProcessor(runner))
}
