package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scanner is the reminder scan entry point driven by the scheduler.
type Scanner interface {
	Scan(ctx context.Context, now time.Time) error
}

// Scheduler fires the reminder scan once per day near the configured hour.
// Overlapping runs are skipped, not queued: the scan is idempotent, so a
// skipped tick loses nothing.
type Scheduler struct {
	scanner Scanner
	logger  *slog.Logger
	hour    int

	mu sync.Mutex
}

// New creates a Scheduler that runs scanner daily at the given local hour (0-23).
func New(scanner Scanner, logger *slog.Logger, hour int) *Scheduler {
	return &Scheduler{
		scanner: scanner,
		logger:  logger,
		hour:    hour,
	}
}

// Run blocks until ctx is cancelled, firing the scan at each daily trigger.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("reminder scheduler started", "hour", s.hour)
	for {
		next := NextRun(time.Now(), s.hour)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("reminder scheduler stopped")
			return
		case now := <-timer.C:
			s.RunOnce(ctx, now)
		}
	}
}

// RunOnce triggers a single scan if none is running. Safe to call from a
// manual trigger while the daily loop is active.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) {
	if !s.mu.TryLock() {
		s.logger.Warn("reminder scan still running, skipping trigger")
		return
	}
	defer s.mu.Unlock()

	if err := s.scanner.Scan(ctx, now); err != nil {
		s.logger.Error("reminder scan failed", "err", err)
	}
}

// NextRun returns the next occurrence of hour after now, in now's location.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
