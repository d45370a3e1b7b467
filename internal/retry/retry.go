package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

// Policy is how many times and how long to back off.
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs fn, retrying transient failures with exponential backoff and jitter.
// op names the operation in log lines.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !isRetryable(err) {
		return v, err
	}

	lastErr := err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := backoffDelay(p.BaseDelay, attempt, lastErr)

		logger.Warn("retrying after transient error",
			"op", op,
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			var zero T
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		v, err = fn(ctx)
		if err == nil || !isRetryable(err) {
			return v, err
		}
		lastErr = err
	}

	var zero T
	return zero, lastErr
}

// RetryMailer is a decorator that retries transient send failures.
type RetryMailer struct {
	inner  model.Mailer
	policy Policy
	logger *slog.Logger
}

// NewRetryMailer wraps a Mailer with retry logic.
func NewRetryMailer(inner model.Mailer, policy Policy, logger *slog.Logger) *RetryMailer {
	return &RetryMailer{inner: inner, policy: policy, logger: logger}
}

func (m *RetryMailer) Send(ctx context.Context, e model.Email) (string, error) {
	return Do(ctx, m.policy, m.logger, "send email", func(ctx context.Context) (string, error) {
		return m.inner.Send(ctx, e)
	})
}

// RetryingGateway retries call retrieval. Dispatch is passed through
// unchanged: a retried create could place the same call twice.
type RetryingGateway struct {
	model.VoiceGateway
	policy Policy
	logger *slog.Logger
}

// NewRetryingGateway wraps a VoiceGateway with retry logic for RetrieveCall.
func NewRetryingGateway(inner model.VoiceGateway, policy Policy, logger *slog.Logger) *RetryingGateway {
	return &RetryingGateway{VoiceGateway: inner, policy: policy, logger: logger}
}

func (g *RetryingGateway) RetrieveCall(ctx context.Context, callID string) (*model.ProviderCall, error) {
	return Do(ctx, g.policy, g.logger, "retrieve call", func(ctx context.Context) (*model.ProviderCall, error) {
		return g.VoiceGateway.RetrieveCall(ctx, callID)
	})
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func backoffDelay(base time.Duration, attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: base * 2^(attempt-1)
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}
