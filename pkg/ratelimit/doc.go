// Package ratelimit paces the operations a run issues against the
// platform's media CDN.
//
// Image downloads are the only high-volume network activity a run
// produces, and the CDN throttles bursts long before it throttles
// volume. The limiter here therefore models spacing, not budget: a
// minimum gap between successive operations, with the first one always
// passing immediately.
//
// The Limiter interface has three methods. Allow claims the next slot
// if the gap has passed, Wait blocks until the gap has passed or the
// context ends, and Reset forgets the previous operation.
//
// Basic Usage:
//
//	// At most one download every 500ms.
//	limiter := ratelimit.NewIntervalLimiter(500 * time.Millisecond)
//
//	for _, url := range urls {
//	    if err := limiter.Wait(ctx); err != nil {
//	        return err // cancelled
//	    }
//	    download(url)
//	}
package ratelimit
