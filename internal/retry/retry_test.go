package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fast = Policy{MaxRetries: 2, BaseDelay: 10 * time.Millisecond}

// mockMailer calls a function on each invocation, tracking call count.
type mockMailer struct {
	calls int
	fn    func(attempt int) (string, error)
}

func (m *mockMailer) Send(_ context.Context, _ model.Email) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

// mockGateway counts retrievals and dispatches.
type mockGateway struct {
	retrieves  int
	dispatches int
	fn         func(attempt int) (*model.ProviderCall, error)
}

func (g *mockGateway) CreatePhoneCall(context.Context, model.PhoneCallRequest) (string, error) {
	g.dispatches++
	return "", &model.HTTPError{StatusCode: 503}
}

func (g *mockGateway) CreateWebCall(context.Context, model.WebCallRequest) (*model.WebCall, error) {
	return &model.WebCall{CallID: "web"}, nil
}

func (g *mockGateway) RetrieveCall(_ context.Context, _ string) (*model.ProviderCall, error) {
	g.retrieves++
	return g.fn(g.retrieves)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockMailer{fn: func(_ int) (string, error) { return "msg-1", nil }}

	id, err := NewRetryMailer(mock, fast, discardLogger()).Send(context.Background(), model.Email{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("id = %q, want msg-1", id)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockMailer{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return "msg-2", nil
	}}

	id, err := NewRetryMailer(mock, fast, discardLogger()).Send(context.Background(), model.Email{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "msg-2" {
		t.Fatalf("id = %q, want msg-2", id)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockMailer{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 422, Err: errors.New("invalid recipient")}
	}}

	_, err := NewRetryMailer(mock, fast, discardLogger()).Send(context.Background(), model.Email{})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 422 {
		t.Fatalf("expected HTTPError with status 422, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockMailer{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	_, err := NewRetryMailer(mock, fast, discardLogger()).Send(context.Background(), model.Email{})
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockMailer{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	_, err := NewRetryMailer(mock, Policy{MaxRetries: 2, BaseDelay: time.Second}, discardLogger()).Send(ctx, model.Email{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 3 * time.Second}
	if got := backoffDelay(time.Millisecond, 1, err); got != 3*time.Second {
		t.Errorf("backoffDelay = %v, want 3s", got)
	}
}

func TestRetryingGateway_RetriesRetrieveOnly(t *testing.T) {
	gw := &mockGateway{fn: func(attempt int) (*model.ProviderCall, error) {
		if attempt < 3 {
			return nil, errors.New("connection reset")
		}
		return &model.ProviderCall{CallID: "ext-1", Transcript: "hello"}, nil
	}}
	rg := NewRetryingGateway(gw, fast, discardLogger())

	pc, err := rg.RetrieveCall(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("RetrieveCall: %v", err)
	}
	if pc.Transcript != "hello" || gw.retrieves != 3 {
		t.Errorf("transcript %q after %d retrievals", pc.Transcript, gw.retrieves)
	}

	if _, err := rg.CreatePhoneCall(context.Background(), model.PhoneCallRequest{}); err == nil {
		t.Fatal("expected dispatch error")
	}
	if gw.dispatches != 1 {
		t.Errorf("dispatches = %d, want 1 (never retried)", gw.dispatches)
	}
}
