package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ReportWriter stores run reports as JSON files named by a random UUID.
type ReportWriter struct {
	Dir string
}

func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{Dir: dir}
}

// SaveJSON writes data as indented JSON and returns the file name.
func (w *ReportWriter) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", uuid.New().String())
	path := filepath.Join(w.Dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	log.Printf("[AUDIT] Saved run report %s", path)
	return filename, nil
}
