package scrape

import (
	"context"

	"xscraper/pkg/collector"
	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/orchestrator"
)

// FeedSurface is the rendering capability one collection attempt
// borrows: the collector's query surface plus release.
type FeedSurface interface {
	collector.Surface
	Close() error
}

// SurfaceOpener yields a surface already navigated to the author's
// feed. Every call must return a fresh surface; attempts never share
// one.
type SurfaceOpener func(ctx context.Context, authorID string) (FeedSurface, error)

// FeedRunner adapts a SurfaceOpener into the orchestrator's Runner.
// Each attempt opens its own page, runs one collection, and releases
// the page whatever the outcome.
type FeedRunner struct {
	open SurfaceOpener
	opts collector.Options
}

var _ orchestrator.Runner = (*FeedRunner)(nil)

// NewFeedRunner creates a runner that collects through opened surfaces
func NewFeedRunner(open SurfaceOpener, opts collector.Options) *FeedRunner {
	return &FeedRunner{
		open: open,
		opts: opts,
	}
}

// CollectAuthor runs one collection attempt for the job's author
func (r *FeedRunner) CollectAuthor(ctx context.Context, job models.AuthorJob) ([]models.PostRecord, error) {
	surface, err := r.open(ctx, job.AuthorID)
	if err != nil {
		return nil, errors.Navigation(job.AuthorID, err)
	}
	defer surface.Close()

	return collector.New(surface, r.opts).Collect(ctx, job)
}
