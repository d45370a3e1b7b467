// Package task runs fire-and-forget side effects such as emails and alerts
// outside the request that scheduled them.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Runner starts detached tasks and tracks them so shutdown can drain them.
type Runner struct {
	ctx     context.Context
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewRunner returns a Runner whose tasks inherit values (not cancellation)
// from ctx and are each bounded by timeout.
func NewRunner(ctx context.Context, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{ctx: ctx, timeout: timeout, logger: logger}
}

// Go runs fn on its own goroutine. The caller never sees its error: failures
// and panics are logged with the task name.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx := context.WithoutCancel(r.ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := r.run(ctx, fn); err != nil {
			r.logger.Error("background task failed", "task", name, "duration", time.Since(start), "error", err)
			return
		}
		r.logger.Debug("background task done", "task", name, "duration", time.Since(start))
	}()
}

func (r *Runner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v\n%s", p, debug.Stack())
		}
	}()
	return fn(ctx)
}

// Wait blocks until every started task has returned or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}
