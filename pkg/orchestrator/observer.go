package orchestrator

// Observer receives job lifecycle notifications. Implementations must be
// safe for concurrent use; jobs run on separate goroutines.
type Observer interface {
	// AttemptStarted reports the start of one collection attempt
	AttemptStarted(authorID string, attempt, maxAttempts int)

	// AttemptFailed reports one failed attempt
	AttemptFailed(authorID string, attempt int, err error)

	// HookFailed reports an OnBeforeRetry hook that panicked
	HookFailed(authorID string, attempt int, err error)

	// JobExhausted reports a job whose every attempt failed
	JobExhausted(authorID string, attempts int, lastErr error)
}

// NopObserver discards every notification
type NopObserver struct{}

func (NopObserver) AttemptStarted(string, int, int) {}

func (NopObserver) AttemptFailed(string, int, error) {}

func (NopObserver) HookFailed(string, int, error) {}

func (NopObserver) JobExhausted(string, int, error) {}
