package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bubu-hq/verifier/pkg/telemetry/logging"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule.
//
// Common expressions:
//   - "*/15 * * * *" - every 15 minutes
//   - "0 * * * *"    - hourly
//   - "0 6 * * 1-5"  - weekdays at 6 AM
type Scheduler struct {
	schedule string
	job      func(ctx context.Context)
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *logging.Logger
	running  bool
}

// NewScheduler validates schedule and creates a scheduler for job.
func NewScheduler(schedule string, job func(ctx context.Context), logger *logging.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.WithComponent("watch.scheduler"),
	}, nil
}

// Start schedules the job and returns. The scheduler stops when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Debug("scheduled verification triggered", "schedule", s.schedule)
		s.job(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule verification: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("verification scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("verification scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, or nil when not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
