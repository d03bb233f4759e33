package retry

import "time"

// Hook runs between a failed collection attempt and the retry that
// follows it. attempt is the number of the attempt that just failed,
// counting from 1. It never runs after the final attempt.
type Hook func(authorID string, attempt int, lastErr error)

// Policy controls how author collection attempts are repeated. The
// zero value means a single attempt with no pause between retries.
type Policy struct {
	// MaxAttempts is the total number of attempts per author, the
	// first one included. Values below 1 are treated as 1.
	MaxAttempts int
	// Backoff yields the pause before each retry. Nil means no pause.
	Backoff BackoffStrategy
	// OnBeforeRetry is invoked after every failed attempt except the
	// last. A panic inside the hook is contained by the caller and
	// never aborts the run.
	OnBeforeRetry Hook
}

// DefaultPolicy retries twice after the initial attempt with
// exponential backoff
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     DefaultExponentialBackoff(),
	}
}

// Attempts returns MaxAttempts clamped to at least one
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the pause that follows the given failed attempt
func (p Policy) Delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.NextDelay(attempt)
}
