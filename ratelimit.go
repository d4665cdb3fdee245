package xcrawler

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces requests at least 60/requestsPerMinute seconds apart.
// It is safe for concurrent use; one instance may be shared by several clients.
type RateLimiter struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewRateLimiter creates a limiter for the given per-minute budget (minimum 1).
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	interval := time.Minute / time.Duration(max(1, requestsPerMinute))
	return &RateLimiter{
		interval: interval,
		// Burst 1: a permit reserves the next slot, so concurrent callers queue
		// behind each other instead of racing on a shared timestamp.
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// AwaitTurn blocks until the caller may issue a request or ctx is done.
func (r *RateLimiter) AwaitTurn(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("await rate limiter: %w", err)
	}
	return nil
}

// Interval returns the enforced spacing.
func (r *RateLimiter) Interval() time.Duration {
	return r.interval
}
