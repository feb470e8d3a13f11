// Package ratelimit throttles calls to remote services.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRetryAfter is the pause applied when a throttling response carries no hint.
const DefaultRetryAfter = 60 * time.Second

// Limiter is a token bucket with an additional pause window that is opened
// when the remote service reports throttling.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	service string
}

// New creates a limiter for service allowing requestsPerSecond sustained calls.
// A non-positive rate disables throttling.
func New(service string, requestsPerSecond int) *Limiter {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = requestsPerSecond * 2
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		service: service,
	}
}

// Service returns the name the limiter was created for.
func (l *Limiter) Service() string {
	return l.service
}

// Wait blocks until a call may be made.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRateLimitError pauses all callers for retryAfter.
// A non-positive value uses DefaultRetryAfter.
func (l *Limiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if next := time.Now().Add(retryAfter); next.After(l.retryAt) {
		l.retryAt = next
	}
}

// Allow reports whether a call may be made now without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}
