package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/shreyas/tweetsched/lib/logger"
)

// SweepRunner triggers a SweepWorker on a cron schedule
type SweepRunner struct {
	worker   SweepWorkerInterface
	schedule *cronexpr.Expression
	expr     string
	now      func() time.Time
}

// NewSweepRunner parses the cron expression that drives the sweeps
func NewSweepRunner(worker SweepWorkerInterface, schedule string) (*SweepRunner, error) {
	expr, err := cronexpr.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return &SweepRunner{
		worker:   worker,
		schedule: expr,
		expr:     schedule,
		now:      time.Now,
	}, nil
}

// NextFire returns the first fire time strictly after t, zero when the schedule never fires again
func (r *SweepRunner) NextFire(t time.Time) time.Time {
	return r.schedule.Next(t)
}

// Run sweeps at every fire time until ctx is cancelled. Sweeps run one at a time;
// a fire time that passes while a sweep is running is skipped.
func (r *SweepRunner) Run(ctx context.Context) {
	logger.Info("sweep runner started", "schedule", r.expr)

	for {
		next := r.NextFire(r.now())
		if next.IsZero() {
			logger.Warn("sweep schedule has no future fire times, runner stopping", "schedule", r.expr)
			return
		}

		timer := time.NewTimer(next.Sub(r.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("sweep runner stopping due to context cancellation")
			return
		case <-timer.C:
			r.runOnce(ctx)
		}
	}
}

// Start runs the runner in its own goroutine
func (r *SweepRunner) Start(ctx context.Context) {
	go r.Run(ctx)
}

// runOnce sweeps and recovers from panics so the runner survives a bad sweep
func (r *SweepRunner) runOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("sweep panicked and recovered", "panic", rec)
		}
	}()

	if _, err := r.worker.Sweep(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
		logger.Error("scheduled sweep failed", "error", err)
	}
}
