package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

// GapLimiter enforces a minimum delay between consecutive requests that share
// a key.
type GapLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewGapLimiter creates a limiter that enforces minDelay between consecutive
// requests with the same key.
func NewGapLimiter(minDelay time.Duration) *GapLimiter {
	return &GapLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request for key.
// Returns an error if the context is cancelled while waiting.
func (r *GapLimiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	// Reserve the next slot before releasing the lock so concurrent callers queue up.
	next := last.Add(r.minDelay)
	r.lastCall[key] = next
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(time.Until(next)):
	}
	return nil
}

// RateLimitedGateway is a decorator that spaces out outbound phone call
// dispatches. Web calls and retrieval pass straight through.
type RateLimitedGateway struct {
	model.VoiceGateway
	limiter *GapLimiter
	key     string
}

// NewRateLimitedGateway wraps a VoiceGateway with dispatch rate limiting.
// Gateways dialling through the same provider account should share a limiter.
func NewRateLimitedGateway(inner model.VoiceGateway, limiter *GapLimiter, key string) *RateLimitedGateway {
	return &RateLimitedGateway{VoiceGateway: inner, limiter: limiter, key: key}
}

// CreatePhoneCall waits for the limiter, then delegates to the wrapped gateway.
func (g *RateLimitedGateway) CreatePhoneCall(ctx context.Context, req model.PhoneCallRequest) (string, error) {
	if err := g.limiter.Wait(ctx, g.key); err != nil {
		return "", err
	}
	return g.VoiceGateway.CreatePhoneCall(ctx, req)
}
