package collector

import (
	"context"
	"time"
)

// Surface defines the rendering capabilities the collector consumes.
// pkg/browser implements it over a live page; tests script it.
type Surface interface {
	// Eval runs js in the page and unmarshals its JSON string result into out
	Eval(ctx context.Context, js string, out any) error

	// Has reports whether the selector currently matches an element
	Has(ctx context.Context, selector string) (bool, error)

	// WaitVisible blocks until the selector matches a visible element
	// or the timeout elapses
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// ScrollToBottom scrolls the page to its current bottom, prompting the
	// platform to render the next batch of posts
	ScrollToBottom(ctx context.Context) error
}
