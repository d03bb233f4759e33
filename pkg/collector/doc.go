// Package collector implements incremental collection of one author's
// timeline through a rendered, infinite-scroll page.
//
// The collector drives a pagination loop against a Surface that is already
// navigated to the author's feed: extract the currently rendered posts,
// validate and dedupe them, apply the time-boundary stop policy, scroll,
// and repeat. It owns no browser state itself; pkg/browser supplies the
// production Surface and tests supply scripted fakes.
//
// Termination, first to fire wins:
//   - boundary: three consecutive non-pinned posts older than the start
//     boundary (pinned posts are resurfaced by the platform regardless of
//     recency and never touch the streak)
//   - idle: three consecutive rounds contributing zero new posts
//   - round cap: a hard ceiling on pagination rounds
//
// Basic usage:
//
//	c := collector.New(surface, collector.Options{})
//	posts, err := c.Collect(ctx, models.AuthorJob{
//	    AuthorID:      "acme",
//	    StartBoundary: time.Now().AddDate(0, 0, -7),
//	})
//
// Any failure aborts the whole run with no partial output: the caller owns
// the surface and decides whether to retry with a fresh one.
package collector
