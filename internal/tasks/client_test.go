package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/importers"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestQueuePath(t *testing.T) {
	assert.Equal(t, "/data/editions-tasks.db", QueuePath("/data/editions.db"))
	assert.Equal(t, "editions-tasks", QueuePath("editions"))
}

func TestClientStartStop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestStopWithoutStart(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.Stop(context.Background()))
}

type fakeRunner struct {
	paths chan string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, root string) (*importers.RunResult, error) {
	f.paths <- root
	if f.err != nil {
		return nil, f.err
	}
	return &importers.RunResult{EditionID: 1, SourceDir: root, Status: entities.RunStatusCompleted}, nil
}

func TestExtractEditionQueue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	runner := &fakeRunner{paths: make(chan string, 1)}
	client.Register(NewExtractEditionQueue(runner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(ExtractEditionTask{Path: "/inbox/editie-12"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case path := <-runner.paths:
		assert.Equal(t, "/inbox/editie-12", path)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestExtractEditionProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("missing path", func(t *testing.T) {
		err := ExtractEditionProcessor(&fakeRunner{paths: make(chan string, 1)})(ctx, ExtractEditionTask{})
		assert.Error(t, err)
	})

	t.Run("fatal run", func(t *testing.T) {
		runner := &fakeRunner{paths: make(chan string, 1), err: errors.New("export root missing")}
		err := ExtractEditionProcessor(runner)(ctx, ExtractEditionTask{Path: "/weg"})
		assert.ErrorContains(t, err, "export root missing")
	})

	t.Run("nil runner", func(t *testing.T) {
		assert.Error(t, ExtractEditionProcessor(nil)(ctx, ExtractEditionTask{Path: "/x"}))
	})
}

type fakeCleaner struct {
	retention time.Duration
	logged    []int64
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.retention = retention
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

func (f *fakeCleaner) LogCleanup(deleted int64, err error) {
	f.logged = append(f.logged, deleted)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("default retention", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		require.NoError(t, CleanupAuditEventsProcessor(cleaner)(ctx, CleanupAuditEventsTask{}))
		assert.Equal(t, 90*24*time.Hour, cleaner.retention)
		assert.Equal(t, []int64{7}, cleaner.logged)
	})

	t.Run("configured retention", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		require.NoError(t, CleanupAuditEventsProcessor(cleaner)(ctx, CleanupAuditEventsTask{RetentionDays: 10}))
		assert.Equal(t, 10*24*time.Hour, cleaner.retention)
	})

	t.Run("failure is recorded", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("locked")}
		assert.Error(t, CleanupAuditEventsProcessor(cleaner)(ctx, CleanupAuditEventsTask{}))
		assert.Len(t, cleaner.logged, 1)
	})
}

func TestTaskConfigs(t *testing.T) {
	extract := ExtractEditionTask{Path: "/x"}.Config()
	assert.Equal(t, "extract_edition", extract.Name)
	assert.Equal(t, 1, extract.MaxAttempts)
	assert.Equal(t, 30*time.Minute, extract.Timeout)

	cleanup := CleanupAuditEventsTask{}.Config()
	assert.Equal(t, "cleanup_audit_events", cleanup.Name)
	assert.NotNil(t, cleanup.Retention)
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "pending", StatusName(backlite.TaskStatusPending))
	assert.Equal(t, "success", StatusName(backlite.TaskStatusSuccess))
	assert.Equal(t, "not_found", StatusName(backlite.TaskStatusNotFound))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 45*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}
