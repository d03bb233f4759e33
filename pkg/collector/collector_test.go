package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/twitter"
)

// fakeSurface scripts the rendered feed: rounds[i] is what the i-th
// extraction sees. Once the script runs out, the last round repeats,
// mimicking a feed that has stopped growing.
type fakeSurface struct {
	rounds    [][]twitter.RawCandidate
	evalCalls int
	scrolls   int

	hasEmpty  bool
	waitErr   error
	hasErr    error
	evalErr   error
	scrollErr error
}

func (f *fakeSurface) Eval(ctx context.Context, js string, out any) error {
	if f.evalErr != nil {
		return f.evalErr
	}
	idx := f.evalCalls
	f.evalCalls++
	if idx >= len(f.rounds) {
		idx = len(f.rounds) - 1
	}
	var round []twitter.RawCandidate
	if idx >= 0 {
		round = f.rounds[idx]
	}
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakeSurface) Has(ctx context.Context, selector string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	if selector == twitter.SelectorEmptyState {
		return f.hasEmpty, nil
	}
	return true, nil
}

func (f *fakeSurface) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakeSurface) ScrollToBottom(ctx context.Context) error {
	if f.scrollErr != nil {
		return f.scrollErr
	}
	f.scrolls++
	return nil
}

// recordingObserver captures notifications for assertions
type recordingObserver struct {
	skipped   []error
	rounds    []int
	stopped   bool
	reason    StopReason
	stopRound int
	collected int
}

func (r *recordingObserver) CandidateSkipped(authorID string, reason error) {
	r.skipped = append(r.skipped, reason)
}

func (r *recordingObserver) RoundCompleted(authorID string, round, added int) {
	r.rounds = append(r.rounds, added)
}

func (r *recordingObserver) RunStopped(authorID string, reason StopReason, rounds, collected int) {
	r.stopped = true
	r.reason = reason
	r.stopRound = rounds
	r.collected = collected
}

func candidate(handle, id, ts string) twitter.RawCandidate {
	return twitter.RawCandidate{
		Permalink: fmt.Sprintf("/%s/status/%s", handle, id),
		Datetime:  ts,
		Text:      "post " + id,
	}
}

func pinnedCandidate(handle, id, ts string) twitter.RawCandidate {
	c := candidate(handle, id, ts)
	c.Pinned = true
	return c
}

func testOptions(obs Observer) Options {
	return Options{
		SettleDelay:  time.Millisecond,
		ReadyTimeout: time.Second,
		Observer:     obs,
	}
}

func postIDs(posts []models.PostRecord) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestCollectBoundaryScenario(t *testing.T) {
	// Boundary 2026-01-10; discovery order 01-12, 01-11, then three stale
	// posts, then a pinned post from 01-20 that must never be reached
	// because the stale streak stops the round first.
	boundary := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "6", "2026-01-12T00:00:00.000Z"),
			candidate("acme", "5", "2026-01-11T00:00:00.000Z"),
			candidate("acme", "4", "2026-01-09T00:00:00.000Z"),
			candidate("acme", "3", "2026-01-08T00:00:00.000Z"),
			candidate("acme", "2", "2026-01-07T00:00:00.000Z"),
			pinnedCandidate("acme", "9", "2026-01-20T00:00:00.000Z"),
		}},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"6", "5"}, postIDs(posts))
	assert.Equal(t, StopBoundary, obs.reason)
	assert.Equal(t, 1, obs.stopRound)
	assert.Equal(t, 2, obs.collected)
	assert.Equal(t, 1, surface.evalCalls)
	assert.Equal(t, 0, surface.scrolls)
}

func TestCollectDedup(t *testing.T) {
	boundary := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{
			{
				candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
				candidate("acme", "2", "2026-01-11T00:00:00.000Z"),
			},
			{
				candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
				candidate("acme", "2", "2026-01-11T00:00:00.000Z"),
				candidate("acme", "3", "2026-01-10T00:00:00.000Z"),
			},
		},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, postIDs(posts))
	assert.Equal(t, StopIdle, obs.reason)
}

func TestCollectIdleStops(t *testing.T) {
	boundary := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
			candidate("acme", "2", "2026-01-11T00:00:00.000Z"),
		}},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, StopIdle, obs.reason)
	// Round 1 adds both posts; rounds 2 to 4 re-render the same content
	// and contribute nothing.
	assert.Equal(t, 4, obs.stopRound)
	assert.Equal(t, []int{2, 0, 0, 0}, obs.rounds)
}

func TestCollectPinnedDoesNotResetStaleStreak(t *testing.T) {
	boundary := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "1", "2026-01-05T00:00:00.000Z"),
			candidate("acme", "2", "2026-01-04T00:00:00.000Z"),
			pinnedCandidate("acme", "8", "2026-01-01T00:00:00.000Z"),
			candidate("acme", "3", "2026-01-03T00:00:00.000Z"),
		}},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Empty(t, posts)
	// The pinned post neither resets nor extends the streak: the third
	// stale post still fires the boundary in round one.
	assert.Equal(t, StopBoundary, obs.reason)
	assert.Equal(t, 1, obs.stopRound)
}

func TestCollectPinnedDoesNotExtendStaleStreak(t *testing.T) {
	boundary := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "1", "2026-01-05T00:00:00.000Z"),
			pinnedCandidate("acme", "8", "2026-01-01T00:00:00.000Z"),
			candidate("acme", "2", "2026-01-04T00:00:00.000Z"),
		}},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Empty(t, posts)
	// Two stale posts plus one pinned never reach the streak limit, so the
	// run winds down through the idle rule instead.
	assert.Equal(t, StopIdle, obs.reason)
}

func TestCollectBoundaryInclusive(t *testing.T) {
	boundary := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "1", "2026-01-10T00:00:00.000Z"),
		}},
	}

	c := New(surface, testOptions(nil))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, postIDs(posts))
}

func TestCollectRoundCap(t *testing.T) {
	boundary := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{
			{candidate("acme", "1", "2026-01-12T00:00:00.000Z")},
			{
				candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
				candidate("acme", "2", "2026-01-11T00:00:00.000Z"),
			},
		},
	}
	obs := &recordingObserver{}

	opts := testOptions(obs)
	opts.MaxRounds = 2
	c := New(surface, opts)
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, postIDs(posts))
	assert.Equal(t, StopRoundCap, obs.reason)
	assert.Equal(t, 2, obs.stopRound)
	assert.Equal(t, 1, surface.scrolls)
}

func TestCollectEmptyFeedWithoutMarker(t *testing.T) {
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{}},
	}
	obs := &recordingObserver{}

	c := New(surface, testOptions(obs))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, StopIdle, obs.reason)
}

func TestCollectAuthorNotFound(t *testing.T) {
	surface := &fakeSurface{hasEmpty: true}

	c := New(surface, testOptions(nil))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "ghost",
		StartBoundary: time.Now(),
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthorNotFound))
	assert.Nil(t, posts)
	// Fails before any extraction or scrolling happens.
	assert.Equal(t, 0, surface.evalCalls)
	assert.Equal(t, 0, surface.scrolls)
}

func TestCollectLoadTimeout(t *testing.T) {
	surface := &fakeSurface{waitErr: fmt.Errorf("deadline exceeded")}

	c := New(surface, testOptions(nil))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: time.Now(),
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLoadTimeout))
	assert.Nil(t, posts)
}

func TestCollectEvalFailureAborts(t *testing.T) {
	surface := &fakeSurface{evalErr: fmt.Errorf("page crashed")}

	c := New(surface, testOptions(nil))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: time.Now(),
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExtraction))
	assert.Nil(t, posts)
}

func TestCollectScrollFailureAborts(t *testing.T) {
	boundary := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
		}},
		scrollErr: fmt.Errorf("target closed"),
	}

	c := New(surface, testOptions(nil))
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSurface))
	// No partial output even though round one collected a post.
	assert.Nil(t, posts)
}

func TestCollectSkipsInvalidCandidates(t *testing.T) {
	boundary := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	surface := &fakeSurface{
		rounds: [][]twitter.RawCandidate{{
			candidate("someone_else", "7", "2026-01-12T00:00:00.000Z"),
			candidate("acme", "1", "2026-01-12T00:00:00.000Z"),
			candidate("acme", "2", "not-a-timestamp"),
		}},
	}
	obs := &recordingObserver{}

	opts := testOptions(obs)
	opts.MaxRounds = 1
	c := New(surface, opts)
	posts, err := c.Collect(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: boundary,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, postIDs(posts))
	assert.Len(t, obs.skipped, 2)
}

func TestNewDefaults(t *testing.T) {
	c := New(&fakeSurface{}, Options{})

	assert.Equal(t, DefaultMaxRounds, c.opts.MaxRounds)
	assert.Equal(t, DefaultSettleDelay, c.opts.SettleDelay)
	assert.Equal(t, DefaultReadyTimeout, c.opts.ReadyTimeout)
	assert.NotNil(t, c.opts.Observer)
}
