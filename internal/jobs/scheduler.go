package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron schedules (with a seconds field).
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration

	mu   sync.RWMutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates a scheduler whose runs are bounded by timeout.
func NewScheduler(log *zap.Logger, timeout time.Duration) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		log:     log,
		timeout: timeout,
		jobs:    make(map[string]cron.EntryID),
	}
}

// Add schedules job under name. An empty spec leaves the job unscheduled.
func (s *Scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.log.Info("job has no schedule, skipping", zap.String("job", name))
		return nil
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = entryID
	s.mu.Unlock()

	s.log.Info("scheduled job", zap.String("job", name), zap.String("schedule", spec))
	return nil
}

// Scheduled reports whether a job with that name is registered.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.jobs[name]
	return ok
}

func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Info("job complete", zap.String("job", name), zap.Duration("elapsed", time.Since(started)))
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}

	s.mu.Lock()
	s.jobs = make(map[string]cron.EntryID)
	s.mu.Unlock()

	s.log.Info("scheduler stopped")
}
