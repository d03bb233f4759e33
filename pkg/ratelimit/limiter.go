package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces successive operations
type Limiter interface {
	// Allow reports whether an operation may proceed right now
	Allow() bool
	// Wait blocks until the next operation may proceed or the context
	// is cancelled
	Wait(ctx context.Context) error
	// Reset clears the pacing state
	Reset()
}

// IntervalLimiter enforces a minimum gap between successive operations.
// The first operation always proceeds immediately.
type IntervalLimiter struct {
	gap  time.Duration
	last time.Time
	mu   sync.Mutex
}

// NewIntervalLimiter creates a limiter with the given minimum gap
func NewIntervalLimiter(gap time.Duration) *IntervalLimiter {
	return &IntervalLimiter{gap: gap}
}

// Allow checks if an operation can proceed and claims the slot if so
func (il *IntervalLimiter) Allow() bool {
	il.mu.Lock()
	defer il.mu.Unlock()

	now := time.Now()
	if il.last.IsZero() || now.Sub(il.last) >= il.gap {
		il.last = now
		return true
	}
	return false
}

// Wait blocks until the gap since the previous operation has passed
func (il *IntervalLimiter) Wait(ctx context.Context) error {
	for {
		il.mu.Lock()
		now := time.Now()
		if il.last.IsZero() || now.Sub(il.last) >= il.gap {
			il.last = now
			il.mu.Unlock()
			return nil
		}
		remaining := il.gap - now.Sub(il.last)
		il.mu.Unlock()

		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Reset forgets the previous operation so the next one proceeds
// immediately
func (il *IntervalLimiter) Reset() {
	il.mu.Lock()
	defer il.mu.Unlock()

	il.last = time.Time{}
}
