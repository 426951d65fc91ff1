package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/editions/internal/entities"
)

type fakeSeen struct {
	imported map[string]bool
	err      error
}

func (f *fakeSeen) HasSourceDir(_ context.Context, dir string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.imported[dir], nil
}

type fakeStatus struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeStatus) SetSettings(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
	return nil
}

type fakeScanAudit struct {
	calls  int
	queued int
	err    error
}

func (f *fakeScanAudit) LogInboxScan(_ string, queued int, err error) {
	f.calls++
	f.queued = queued
	f.err = err
}

type recordingDispatcher struct {
	paths []string
	fail  map[string]bool
}

func (d *recordingDispatcher) dispatch(_ context.Context, path string) error {
	if d.fail[filepath.Base(path)] {
		return errors.New("queue unavailable")
	}
	d.paths = append(d.paths, path)
	return nil
}

func writeExport(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "magazine.html"), []byte("<html><body></body></html>"), 0644))
}

func setupInbox(t *testing.T) string {
	t.Helper()
	inbox := t.TempDir()
	writeExport(t, filepath.Join(inbox, "editie-11"))
	writeExport(t, filepath.Join(inbox, "editie-12"))
	writeExport(t, filepath.Join(inbox, ".verborgen"))
	require.NoError(t, os.MkdirAll(filepath.Join(inbox, "leeg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notitie.txt"), []byte("x"), 0644))
	return inbox
}

func TestFindExports(t *testing.T) {
	inbox := setupInbox(t)

	exports, err := FindExports(inbox)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(inbox, "editie-11"),
		filepath.Join(inbox, "editie-12"),
	}, exports)
}

func TestFindExports_MissingDir(t *testing.T) {
	_, err := FindExports(filepath.Join(t.TempDir(), "weg"))
	assert.Error(t, err)
}

func TestScan_DispatchesNewExportsOnce(t *testing.T) {
	inbox := setupInbox(t)
	seen := &fakeSeen{imported: map[string]bool{filepath.Join(inbox, "editie-11"): true}}
	d := &recordingDispatcher{}
	status := &fakeStatus{}
	auditor := &fakeScanAudit{}

	s := NewInboxScheduler(InboxConfig{Dir: inbox, Schedule: "*/5 * * * *"}, seen, d.dispatch, status, auditor)

	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(inbox, "editie-12")}, result.Dispatched)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	assert.Equal(t, "success", status.values[entities.SettingKeyInboxLastScanStatus])
	assert.NotEmpty(t, status.values[entities.SettingKeyInboxLastScanAt])
	assert.Equal(t, 1, auditor.calls)
	assert.Equal(t, 1, auditor.queued)

	result, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Dispatched)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, d.paths, 1)
	assert.Equal(t, 1, auditor.calls, "idle scans are not audited")
}

func TestScan_FailedDispatchIsRetried(t *testing.T) {
	inbox := setupInbox(t)
	d := &recordingDispatcher{fail: map[string]bool{"editie-12": true}}
	status := &fakeStatus{}
	auditor := &fakeScanAudit{}

	s := NewInboxScheduler(InboxConfig{Dir: inbox}, &fakeSeen{}, d.dispatch, status, auditor)

	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Dispatched, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "editie-12")
	assert.Equal(t, "partial", status.values[entities.SettingKeyInboxLastScanStatus])
	assert.Error(t, auditor.err)

	d.fail = nil
	result, err = s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(inbox, "editie-12")}, result.Dispatched)
}

func TestScan_CheckErrorIsReported(t *testing.T) {
	inbox := setupInbox(t)
	d := &recordingDispatcher{}
	status := &fakeStatus{}

	s := NewInboxScheduler(InboxConfig{Dir: inbox}, &fakeSeen{err: errors.New("db locked")}, d.dispatch, status, nil)

	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, d.paths)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, "failed", status.values[entities.SettingKeyInboxLastScanStatus])
}

func TestScan_MissingInbox(t *testing.T) {
	status := &fakeStatus{}
	auditor := &fakeScanAudit{}
	s := NewInboxScheduler(InboxConfig{Dir: filepath.Join(t.TempDir(), "weg")}, &fakeSeen{}, (&recordingDispatcher{}).dispatch, status, auditor)

	_, err := s.Scan(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "failed", status.values[entities.SettingKeyInboxLastScanStatus])
	assert.Equal(t, 1, auditor.calls)
}

func TestScan_InProgress(t *testing.T) {
	s := NewInboxScheduler(InboxConfig{Dir: t.TempDir()}, &fakeSeen{}, (&recordingDispatcher{}).dispatch, nil, nil)

	s.scanMu.Lock()
	_, err := s.Scan(context.Background())
	s.scanMu.Unlock()

	assert.ErrorIs(t, err, ErrScanInProgress)
}

func TestInboxScheduler_StartStop(t *testing.T) {
	inbox := filepath.Join(t.TempDir(), "inbox")
	s := NewInboxScheduler(InboxConfig{Dir: inbox, Schedule: "*/15 * * * *"}, &fakeSeen{}, (&recordingDispatcher{}).dispatch, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.NotNil(t, s.NextRunTime())
	assert.DirExists(t, inbox)

	require.NoError(t, s.Reschedule(context.Background(), "0 * * * *"))
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestInboxScheduler_StartWithoutDir(t *testing.T) {
	s := NewInboxScheduler(InboxConfig{Schedule: "*/15 * * * *"}, &fakeSeen{}, (&recordingDispatcher{}).dispatch, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestInboxScheduler_InvalidSchedule(t *testing.T) {
	s := NewInboxScheduler(InboxConfig{Dir: t.TempDir(), Schedule: "soms"}, &fakeSeen{}, (&recordingDispatcher{}).dispatch, nil, nil)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestJob_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := NewJob("Test", "* * * * *", func(context.Context) {})

	require.NoError(t, j.Start(ctx))
	require.True(t, j.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !j.IsRunning() }, time.Second, 10*time.Millisecond)
}
