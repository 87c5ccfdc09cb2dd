// Package scheduler runs the periodic subscription jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySchedule runs the expiry sweep every 15 minutes.
const DefaultExpirySchedule = "*/15 * * * *"

// Sweeper expires lapsed subscriptions.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the expiry sweep on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *slog.Logger
	timeout time.Duration
}

// New registers the sweep under schedule, a standard five-field cron
// expression. Overlapping runs are skipped.
func New(schedule string, sweeper Sweeper, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	s := &Scheduler{sweeper: sweeper, logger: logger, timeout: 5 * time.Minute}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("scheduling expiry sweep %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	start := time.Now()
	n, err := s.sweeper.Sweep(ctx, start)
	if err != nil {
		s.logger.ErrorContext(ctx, "subscription expiry sweep failed", slog.Int("expired", n), slog.Any("error", err))
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired subscriptions",
			slog.Int("expired", n),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for a running sweep until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
