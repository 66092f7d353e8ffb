// Package scheduler triggers conversion runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/era5land-etl/internal/domain"
	"github.com/couchcryptid/era5land-etl/internal/pipeline"
)

// Runner converts a date range.
type Runner interface {
	Run(ctx context.Context, req pipeline.RunRequest) (pipeline.Summary, error)
}

// Scheduler runs the trailing window of days ending LagDays before today.
// ERA5-Land is published with a delay of several days, so each tick retries
// every date of the window and the pipeline skips what is already done.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	expr      string
	lagDays   int
	window    int
	clock     clockwork.Clock
	logger    *slog.Logger
}

// New creates a Scheduler for the given cron expression.
func New(expr string, lagDays, windowDays int, runner Runner, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		expr:      expr,
		lagDays:   lagDays,
		window:    windowDays,
		clock:     clock,
		logger:    logger,
	}
}

// Window returns the inclusive range of windowDays days ending lagDays before now's UTC date.
func Window(now time.Time, lagDays, windowDays int) pipeline.RunRequest {
	y, m, d := now.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -lagDays)
	return pipeline.RunRequest{Start: end.AddDate(0, 0, -(windowDays - 1)), End: end}
}

// Start registers the job and starts the underlying scheduler. Runs are
// bound to ctx; ticks that fire while a run is active are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.window < 1 {
		return fmt.Errorf("scheduler: window of %d days", s.window)
	}
	if _, err := s.scheduler.Cron(s.expr).Do(s.Tick, ctx); err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", s.expr, err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "schedule", s.expr, "lag_days", s.lagDays, "window_days", s.window)
	return nil
}

// Tick runs the current window once.
func (s *Scheduler) Tick(ctx context.Context) {
	req := Window(s.clock.Now(), s.lagDays, s.window)
	logger := s.logger.With("start", req.Start.Format(domain.DateLayout), "end", req.End.Format(domain.DateLayout))
	logger.Info("scheduled run triggered")

	sum, err := s.runner.Run(ctx, req)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("scheduled run interrupted", "processed", sum.Processed)
	case err != nil:
		logger.Error("scheduled run failed", "error", err)
	case sum.Failed > 0:
		logger.Warn("scheduled run finished with failures", "failed", sum.Failed, "failed_days", sum.FailedDays)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
