// Package ratelimiter throttles incoming API requests with a token bucket.
package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps golang.org/x/time/rate with the semantics the HTTP
// server needs: a zero rate means unlimited, and Allow is the fast path
// used to reject requests with 429 instead of queueing them.
//
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond sustained with the given
// burst capacity. A zero rate disables limiting.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		// rate.Inf has edge cases around burst accounting, so use a
		// rate no client will reach instead.
		requestsPerSecond = 1_000_000_000
		burst = requestsPerSecond
	}
	if burst == 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Allow reports whether a request may proceed, consuming one token.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// SetLimit updates the sustained rate. The burst is raised to match when it
// would otherwise be below the new rate.
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		requestsPerSecond = 1_000_000_000
	}
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))
	if uint(r.limiter.Burst()) < requestsPerSecond {
		r.limiter.SetBurst(int(requestsPerSecond))
	}
}

// SetBurst updates the burst capacity.
func (r *RateLimiter) SetBurst(burst uint) {
	r.limiter.SetBurst(int(burst))
}

// Tokens returns the number of tokens currently available. Useful for
// monitoring; the value is immediately stale.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
