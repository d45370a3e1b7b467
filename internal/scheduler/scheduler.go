package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Reconciler finishes calls whose completion webhook never arrived.
type Reconciler interface {
	Reconcile(ctx context.Context, limit int) (int, error)
}

// Scheduler owns the reconciliation loop: it ticks on an interval and runs
// one bounded sweep per tick.
type Scheduler struct {
	reconciler Reconciler
	interval   time.Duration
	batch      int
	logger     *slog.Logger
}

// NewScheduler creates a scheduler that sweeps up to batch calls every interval.
func NewScheduler(r Reconciler, interval time.Duration, batch int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		reconciler: r,
		interval:   interval,
		batch:      batch,
		logger:     logger,
	}
}

// Run starts the loop. It runs one immediate sweep, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting reconciliation loop",
		"interval", s.interval.String(),
		"batch", s.batch,
	)

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down reconciliation loop")
			return nil
		case <-time.After(s.interval):
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.reconciler.Reconcile(ctx, s.batch)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("reconcile failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("reconcile pass finished", "analysed", n)
	}
}
