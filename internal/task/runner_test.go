package task

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestGo_RunsDetachedFromCallerCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	r := NewRunner(parent, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cancel()

	var ctxErr atomic.Value
	r.Go("send email", func(ctx context.Context) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ok, _ := ctxErr.Load().(bool); !ok {
		t.Error("task context was cancelled with its parent")
	}
}

func TestGo_LogsErrorsAndPanics(t *testing.T) {
	var buf syncBuffer
	r := NewRunner(context.Background(), time.Second, slog.New(slog.NewTextHandler(&buf, nil)))

	r.Go("failing", func(context.Context) error { return errors.New("smtp down") })
	r.Go("panicking", func(context.Context) error { panic("nil map") })
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"task=failing", "smtp down", "task=panicking", "nil map"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestGo_TimeoutBoundsTask(t *testing.T) {
	r := NewRunner(context.Background(), 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var sawDeadline atomic.Bool
	r.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !sawDeadline.Load() {
		t.Error("task was not bounded by the timeout")
	}
}

func TestWait_GivesUpWithContext(t *testing.T) {
	r := NewRunner(context.Background(), 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	release := make(chan struct{})
	defer close(release)
	r.Go("stuck", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want DeadlineExceeded", err)
	}
}
