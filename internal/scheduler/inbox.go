package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/indesign"
)

// ErrScanInProgress is returned when a scan is requested while one runs.
var ErrScanInProgress = errors.New("inbox scan already in progress")

// SourceDirChecker reports whether an export directory was already imported.
type SourceDirChecker interface {
	HasSourceDir(ctx context.Context, sourceDir string) (bool, error)
}

// StatusRecorder stores the outcome of the last scan.
type StatusRecorder interface {
	SetSettings(values map[string]string) error
}

// ScanAuditor records scans in the audit log.
type ScanAuditor interface {
	LogInboxScan(description string, queued int, err error)
}

// Dispatcher hands an export directory over for extraction. It either
// enqueues a background task or runs the pipeline inline.
type Dispatcher func(ctx context.Context, path string) error

// InboxConfig configures the inbox watcher.
type InboxConfig struct {
	Dir      string
	Schedule string
}

// ScanResult summarizes one pass over the inbox.
type ScanResult struct {
	Dispatched []string `json:"dispatched"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// InboxScheduler periodically looks for new export directories below the
// inbox and dispatches each one once.
type InboxScheduler struct {
	dir      string
	seen     SourceDirChecker
	dispatch Dispatcher
	status   StatusRecorder
	audit    ScanAuditor

	job *Job

	scanMu     sync.Mutex
	stateMu    sync.RWMutex
	isScanning bool
	dispatched map[string]bool
}

// NewInboxScheduler creates a stopped scheduler. status and audit may be nil.
func NewInboxScheduler(cfg InboxConfig, seen SourceDirChecker, dispatch Dispatcher, status StatusRecorder, audit ScanAuditor) *InboxScheduler {
	s := &InboxScheduler{
		dir:        cfg.Dir,
		seen:       seen,
		dispatch:   dispatch,
		status:     status,
		audit:      audit,
		dispatched: make(map[string]bool),
	}
	s.job = NewJob("Inbox", cfg.Schedule, s.runScan)
	return s
}

// Start begins watching the inbox. An empty inbox directory disables the
// scheduler.
func (s *InboxScheduler) Start(ctx context.Context) error {
	if s.dir == "" {
		log.Printf("Inbox scheduler: no inbox directory configured, skipping")
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create inbox dir: %w", err)
	}
	return s.job.Start(ctx)
}

func (s *InboxScheduler) Stop() {
	s.job.Stop()
}

// Reschedule switches to a new cron schedule.
func (s *InboxScheduler) Reschedule(ctx context.Context, schedule string) error {
	return s.job.Reschedule(ctx, schedule)
}

// RunNow triggers an immediate scan in the background.
func (s *InboxScheduler) RunNow(ctx context.Context) {
	go s.runScan(ctx)
}

func (s *InboxScheduler) IsRunning() bool {
	return s.job.IsRunning()
}

func (s *InboxScheduler) IsScanning() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.isScanning
}

func (s *InboxScheduler) NextRunTime() *time.Time {
	return s.job.NextRunTime()
}

func (s *InboxScheduler) runScan(ctx context.Context) {
	if _, err := s.Scan(ctx); err != nil && !errors.Is(err, ErrScanInProgress) {
		log.Printf("[INBOX] Scan failed: %v", err)
	}
}

// Scan dispatches every export directory in the inbox that was neither
// imported before nor dispatched by this scheduler. A directory whose
// dispatch fails is retried on the next scan.
func (s *InboxScheduler) Scan(ctx context.Context) (*ScanResult, error) {
	if !s.scanMu.TryLock() {
		log.Printf("[INBOX] Scan skipped (already scanning)")
		return nil, ErrScanInProgress
	}
	defer s.scanMu.Unlock()

	s.setScanning(true)
	defer s.setScanning(false)

	started := time.Now()
	result := &ScanResult{}

	candidates, err := FindExports(s.dir)
	if err != nil {
		s.record(result, err)
		return result, err
	}

	for _, dir := range candidates {
		if ctx.Err() != nil {
			break
		}

		if s.dispatched[dir] {
			result.Skipped++
			continue
		}

		imported, err := s.seen.HasSourceDir(ctx, dir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to check import state: %v", filepath.Base(dir), err))
			continue
		}
		if imported {
			s.dispatched[dir] = true
			result.Skipped++
			continue
		}

		if err := s.dispatch(ctx, dir); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", filepath.Base(dir), err))
			continue
		}
		s.dispatched[dir] = true
		result.Dispatched = append(result.Dispatched, dir)
		log.Printf("[INBOX] Dispatched %s", dir)
	}

	log.Printf("[INBOX] Scan finished in %v: %d dispatched, %d skipped, %d errors",
		time.Since(started).Round(time.Millisecond), len(result.Dispatched), result.Skipped, len(result.Errors))

	var scanErr error
	if len(result.Errors) > 0 {
		scanErr = errors.New(strings.Join(result.Errors, "; "))
	}
	s.record(result, scanErr)
	return result, nil
}

func (s *InboxScheduler) setScanning(v bool) {
	s.stateMu.Lock()
	s.isScanning = v
	s.stateMu.Unlock()
}

func (s *InboxScheduler) record(result *ScanResult, err error) {
	status := "success"
	message := fmt.Sprintf("%d dispatched, %d skipped", len(result.Dispatched), result.Skipped)
	switch {
	case err != nil && len(result.Dispatched) > 0:
		status = "partial"
		message += ": " + err.Error()
	case err != nil:
		status = "failed"
		message = err.Error()
	}

	if s.status != nil {
		if serr := s.status.SetSettings(map[string]string{
			entities.SettingKeyInboxLastScanAt:      time.Now().UTC().Format(time.RFC3339),
			entities.SettingKeyInboxLastScanStatus:  status,
			entities.SettingKeyInboxLastScanMessage: message,
		}); serr != nil {
			log.Printf("[INBOX] Failed to store scan status: %v", serr)
		}
	}

	if s.audit != nil && (err != nil || len(result.Dispatched) > 0) {
		s.audit.LogInboxScan(fmt.Sprintf("Inbox scan of %s: %s", s.dir, message), len(result.Dispatched), err)
	}
}

// FindExports lists the absolute paths of the subdirectories of dir that
// hold at least one spread file. Hidden directories are ignored.
func FindExports(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox dir: %w", err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox dir: %w", err)
	}

	var exports []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		candidate := filepath.Join(abs, entry.Name())
		files, _, err := indesign.FindSpreadFiles(candidate)
		if err != nil || len(files) == 0 {
			continue
		}
		exports = append(exports, candidate)
	}
	return exports, nil
}
