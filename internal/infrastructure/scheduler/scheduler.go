// Package scheduler implements background job scheduling for the
// progression engine. The engine needs very little of it: the reputation
// board rebuild is the only periodic job, everything else is event-driven.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the next time the job should run after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

var (
	// ErrNilJob is returned when registering a nil job.
	ErrNilJob = errors.New("scheduler: job cannot be nil")

	// ErrNilSchedule is returned when registering with a nil schedule.
	ErrNilSchedule = errors.New("scheduler: schedule cannot be nil")

	// ErrJobAlreadyExists is returned when a job name is already taken.
	ErrJobAlreadyExists = errors.New("scheduler: job already exists")

	// ErrSchedulerAlreadyRunning is returned on Register or Start after Start.
	ErrSchedulerAlreadyRunning = errors.New("scheduler: already running")

	// ErrSchedulerNotRunning is returned on Stop without Start.
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
)

// Scheduler runs each registered job on its own timer goroutine. A job's
// next run is computed from the start of its previous run, and runs of the
// same job are serialized on its goroutine, so a slow job can never overlap
// itself.
type Scheduler struct {
	mu sync.RWMutex

	logger   *slog.Logger
	timezone *time.Location

	entries  map[string]*entry
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastRuns map[string]*JobResult
}

type entry struct {
	job      Job
	schedule Schedule
}

// SchedulerConfig contains configuration for the Scheduler.
type SchedulerConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Timezone for schedule calculations (default: local, matching the
	// day boundary the rest of the engine uses).
	Timezone *time.Location
}

// NewScheduler creates a new Scheduler with the given configuration.
func NewScheduler(config SchedulerConfig) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.Local
	}

	return &Scheduler{
		logger:   config.Logger,
		timezone: config.Timezone,
		entries:  make(map[string]*entry),
		lastRuns: make(map[string]*JobResult),
	}
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	name := job.Name()
	if _, taken := s.entries[name]; taken {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}
	s.entries[name] = &entry{job: job, schedule: schedule}

	s.logger.Info("job registered",
		"job", name,
		"description", job.Description(),
		"schedule", schedule.String(),
	)
	return nil
}

// Start launches one timer goroutine per registered job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(e)
	}
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs_count", len(s.entries))
	return nil
}

// Stop cancels all job goroutines and waits for in-flight runs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// LastRun returns the last result for a job, or nil.
func (s *Scheduler) LastRun(jobName string) *JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRuns[jobName]
}

// loop sleeps until the entry's next due time, runs it, and repeats until
// the scheduler stops.
func (s *Scheduler) loop(e *entry) {
	defer s.wg.Done()

	next := e.schedule.Next(time.Now().In(s.timezone))
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		started := time.Now()
		next = e.schedule.Next(started.In(s.timezone))
		s.execute(e.job, started)
	}
}

// execute runs the job once and records the outcome.
func (s *Scheduler) execute(job Job, started time.Time) {
	name := job.Name()
	s.logger.Info("job started", "job", name)

	err := job.Run(s.ctx)
	finished := time.Now()
	took := finished.Sub(started)

	s.mu.Lock()
	s.lastRuns[name] = &JobResult{
		JobName:     name,
		StartedAt:   started,
		CompletedAt: finished,
		Duration:    took,
		Success:     err == nil,
		Error:       err,
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed", "job", name, "duration", took.String(), "error", err)
		return
	}
	s.logger.Info("job completed", "job", name, "duration", took.String())
}
