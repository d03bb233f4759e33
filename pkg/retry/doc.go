// Package retry holds the backoff strategies and retry policy used when
// repeating failed author collection runs.
//
// Three strategies implement BackoffStrategy: exponential with jitter,
// linear, and constant. Wait sleeps for a computed delay but returns
// early when the context is cancelled. A Policy pairs an attempt budget
// with a strategy and an optional per-retry hook:
//
//	policy := retry.Policy{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		OnBeforeRetry: func(authorID string, attempt int, lastErr error) {
//			refreshSession(authorID)
//		},
//	}
//
// The policy itself decides nothing about which errors repeat; every
// failed attempt is retried until the attempt budget runs out.
package retry
