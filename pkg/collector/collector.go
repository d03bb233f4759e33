package collector

import (
	"context"
	"time"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/twitter"
)

const (
	// StaleStreakLimit is how many consecutive non-pinned posts older than
	// the boundary end the run
	StaleStreakLimit = 3

	// IdleStreakLimit is how many consecutive zero-addition rounds end
	// the run
	IdleStreakLimit = 3

	// DefaultMaxRounds caps pagination rounds per run
	DefaultMaxRounds = 100

	// DefaultSettleDelay is how long to wait after a scroll for the
	// platform to render the next batch
	DefaultSettleDelay = 2 * time.Second

	// DefaultReadyTimeout bounds the initial wait for the feed to render
	DefaultReadyTimeout = 15 * time.Second
)

// Options tunes a Collector. The zero value takes every default.
type Options struct {
	MaxRounds    int
	SettleDelay  time.Duration
	ReadyTimeout time.Duration
	Observer     Observer
}

// Collector walks one author's rendered timeline and accumulates posts
// newer than the job's start boundary
type Collector struct {
	surface Surface
	opts    Options
}

// New creates a Collector bound to a surface already navigated to the
// author's feed
func New(surface Surface, opts Options) *Collector {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.ReadyTimeout == 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Collector{
		surface: surface,
		opts:    opts,
	}
}

// run holds the state of one Collect invocation. It is created at call
// start and discarded at return; deduplication never spans runs.
type run struct {
	seen            map[string]struct{}
	posts           []models.PostRecord
	rounds          int
	idleStreak      int
	staleStreak     int
	boundaryReached bool
}

// Collect drives the pagination loop for one author and returns the posts
// in platform discovery order. Any failure aborts the run with no partial
// output.
func (c *Collector) Collect(ctx context.Context, job models.AuthorJob) ([]models.PostRecord, error) {
	authorID := job.AuthorID

	// The feed is ready once either the first post or the empty-state
	// marker renders, whichever comes first.
	if err := c.surface.WaitVisible(ctx, twitter.SelectorReady, c.opts.ReadyTimeout); err != nil {
		return nil, errors.LoadTimeout(authorID, err)
	}

	empty, err := c.surface.Has(ctx, twitter.SelectorEmptyState)
	if err != nil {
		return nil, errors.Extraction(authorID, err)
	}
	if empty {
		return nil, errors.AuthorNotFound(authorID)
	}

	r := &run{seen: make(map[string]struct{})}

	for {
		added, err := c.processRound(ctx, job, r)
		if err != nil {
			return nil, err
		}
		r.rounds++

		if added == 0 {
			r.idleStreak++
		} else {
			r.idleStreak = 0
		}

		switch {
		case r.boundaryReached:
			c.opts.Observer.RunStopped(authorID, StopBoundary, r.rounds, len(r.posts))
			return r.posts, nil
		case r.idleStreak >= IdleStreakLimit:
			c.opts.Observer.RunStopped(authorID, StopIdle, r.rounds, len(r.posts))
			return r.posts, nil
		case r.rounds >= c.opts.MaxRounds:
			c.opts.Observer.RunStopped(authorID, StopRoundCap, r.rounds, len(r.posts))
			return r.posts, nil
		}

		if err := c.surface.ScrollToBottom(ctx); err != nil {
			return nil, errors.Surface(authorID, err)
		}
		if err := settle(ctx, c.opts.SettleDelay); err != nil {
			return nil, err
		}
	}
}

// processRound extracts the currently rendered posts and folds the new ones
// into the run. It returns how many posts this round appended.
func (c *Collector) processRound(ctx context.Context, job models.AuthorJob, r *run) (int, error) {
	var raws []twitter.RawCandidate
	if err := c.surface.Eval(ctx, twitter.ExtractionScript, &raws); err != nil {
		return 0, errors.Extraction(job.AuthorID, err)
	}

	added := 0
	for _, raw := range raws {
		post, err := twitter.ParseCandidate(job.AuthorID, raw)
		if err != nil {
			c.opts.Observer.CandidateSkipped(job.AuthorID, err)
			continue
		}

		if _, dup := r.seen[post.ID]; dup {
			continue
		}
		r.seen[post.ID] = struct{}{}

		if post.PublishedAt.Before(job.StartBoundary) {
			if post.Pinned {
				// The platform resurfaces pinned posts regardless of
				// recency; they are excluded without touching any streak.
				continue
			}
			r.staleStreak++
			if r.staleStreak >= StaleStreakLimit {
				r.boundaryReached = true
				break
			}
			continue
		}

		r.staleStreak = 0
		r.posts = append(r.posts, post)
		added++
	}

	c.opts.Observer.RoundCompleted(job.AuthorID, r.rounds+1, added)
	return added, nil
}

// settle waits for newly triggered content to render, honoring cancellation
func settle(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
