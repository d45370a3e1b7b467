package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type CountingReconciler struct {
	calls atomic.Int32
	limit atomic.Int32
}

func (r *CountingReconciler) Reconcile(_ context.Context, limit int) (int, error) {
	r.calls.Add(1)
	r.limit.Store(int32(limit))
	return 1, nil
}

type ErrorReconciler struct {
	calls atomic.Int32
}

func (r *ErrorReconciler) Reconcile(_ context.Context, _ int) (int, error) {
	r.calls.Add(1)
	return 0, errors.New("store unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler(&CountingReconciler{}, time.Hour, 10, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
}

func TestRun_SweepsImmediatelyThenOnInterval(t *testing.T) {
	r := &CountingReconciler{}
	s := NewScheduler(r, 100*time.Millisecond, 25, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// Allow time for at least two passes (sweep → interval → sweep).
	time.Sleep(250 * time.Millisecond)
	cancel()
	<-done

	if got := r.calls.Load(); got < 2 {
		t.Errorf("reconcile calls = %d, want >= 2", got)
	}
	if got := r.limit.Load(); got != 25 {
		t.Errorf("batch limit = %d, want 25", got)
	}
}

func TestRun_ErrorDoesNotStopLoop(t *testing.T) {
	r := &ErrorReconciler{}
	s := NewScheduler(r, 50*time.Millisecond, 10, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(180 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	if got := r.calls.Load(); got < 2 {
		t.Errorf("reconcile calls = %d, want >= 2 after errors", got)
	}
}
