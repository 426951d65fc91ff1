package audit

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/editions/internal/database/audit"
	"github.com/mrlokans/editions/internal/entities"
)

const maxErrorLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until all pending asynchronous events are written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ExtractionRecord summarizes one extraction run.
type ExtractionRecord struct {
	EditionID *uint
	SourceDir string
	Status    entities.AuditStatus
	Articles  int
	Authors   int
	Errors    int
	Warnings  int
	Err       error
}

// LogExtraction records the outcome of an extraction run.
func (s *Service) LogExtraction(rec ExtractionRecord) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventExtraction,
		Action:      "edition_extract",
		Description: "Extracted " + rec.SourceDir,
		EntityType:  "edition",
		EntityID:    rec.EditionID,
		Status:      rec.Status,
	}

	metadata := map[string]any{
		"source_dir":     rec.SourceDir,
		"articles_count": rec.Articles,
		"authors_count":  rec.Authors,
		"errors_count":   rec.Errors,
		"warnings_count": rec.Warnings,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if rec.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = "Extraction failed for " + rec.SourceDir
		event.ErrorMsg = truncate(rec.Err.Error(), maxErrorLength)
	}

	s.LogAsync(event)
}

// LogInboxScan records one scheduled scan of the inbox directory.
func (s *Service) LogInboxScan(description string, queued int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventInboxScan,
		Action:      "inbox_enqueue",
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}
	if mdBytes, e := json.Marshal(map[string]any{"queued_count": queued}); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLength)
	}

	s.LogAsync(event)
}

// LogCleanup records a retention cleanup run.
func (s *Service) LogCleanup(deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventCleanup,
		Action:    "audit_cleanup",
		Status:    entities.AuditStatusSuccess,
	}
	if mdBytes, e := json.Marshal(map[string]any{"deleted_count": deleted}); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLength)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events. An empty eventType returns all.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(eventType, limit, offset)
}

func (s *Service) GetEditionEvents(editionID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity("edition", editionID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to at most maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
