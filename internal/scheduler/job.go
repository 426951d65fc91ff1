package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job runs a function on a cron schedule until stopped.
type Job struct {
	name     string
	schedule string
	run      func(ctx context.Context)

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewJob creates a stopped job. Start validates the schedule.
func NewJob(name, schedule string, run func(ctx context.Context)) *Job {
	return &Job{
		name:     name,
		schedule: schedule,
		run:      run,
	}
}

// Start registers the job with a fresh cron instance. Cancelling ctx stops
// the job and is also passed to every run.
func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		return nil
	}

	if err := ValidateSchedule(j.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", j.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)

	c := newCron()
	entryID, err := c.AddFunc(j.schedule, func() {
		j.run(runCtx)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule %s job: %w", j.name, err)
	}

	j.cron = c
	j.entryID = entryID
	j.cancelFunc = cancel
	j.cron.Start()
	j.isRunning = true

	nextRun, _ := NextRunTime(j.schedule, time.Now())
	log.Printf("%s scheduler: started with schedule '%s' (%s). Next run: %v",
		j.name, j.schedule, DescribeSchedule(j.schedule), nextRun)

	go func() {
		<-runCtx.Done()
		j.stop(c)
	}()

	return nil
}

// Stop waits for a running invocation to return and stops the schedule.
func (j *Job) Stop() {
	j.stop(nil)
}

// stop stops the job. A non-nil only limits it to that cron instance, so a
// cancelled earlier start cannot stop a rescheduled job.
func (j *Job) stop(only *cron.Cron) {
	j.mu.Lock()
	if !j.isRunning || (only != nil && j.cron != only) {
		j.mu.Unlock()
		return
	}
	c := j.cron
	cancel := j.cancelFunc
	j.isRunning = false
	j.cancelFunc = nil
	j.mu.Unlock()

	cancel()
	<-c.Stop().Done()

	log.Printf("%s scheduler: stopped", j.name)
}

// Reschedule stops the job and starts it again with a new schedule.
func (j *Job) Reschedule(ctx context.Context, schedule string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	j.Stop()

	j.mu.Lock()
	j.schedule = schedule
	j.mu.Unlock()

	return j.Start(ctx)
}

func (j *Job) IsRunning() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.isRunning
}

// Schedule returns the current cron expression.
func (j *Job) Schedule() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.schedule
}

// NextRunTime returns when the job fires next, or nil when stopped.
func (j *Job) NextRunTime() *time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.isRunning {
		return nil
	}

	entry := j.cron.Entry(j.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}
