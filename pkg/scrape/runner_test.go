package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xscraper/pkg/collector"
	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/twitter"
)

// fakeFeedSurface renders the same candidates every round, so runs end
// on the idle streak
type fakeFeedSurface struct {
	candidates []twitter.RawCandidate
	waitErr    error
	closed     bool
}

func (f *fakeFeedSurface) Eval(ctx context.Context, js string, out any) error {
	data, err := json.Marshal(f.candidates)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakeFeedSurface) Has(ctx context.Context, selector string) (bool, error) {
	return false, nil
}

func (f *fakeFeedSurface) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return f.waitErr
}

func (f *fakeFeedSurface) ScrollToBottom(ctx context.Context) error { return nil }

func (f *fakeFeedSurface) Close() error {
	f.closed = true
	return nil
}

func testCollectorOptions() collector.Options {
	return collector.Options{
		SettleDelay:  time.Millisecond,
		ReadyTimeout: time.Second,
	}
}

func TestFeedRunnerCollectsAndCloses(t *testing.T) {
	surface := &fakeFeedSurface{
		candidates: []twitter.RawCandidate{
			{
				Permalink: "/acme/status/1001",
				Datetime:  "2026-01-12T08:30:00.000Z",
				Text:      "hello",
			},
		},
	}

	runner := NewFeedRunner(func(ctx context.Context, authorID string) (FeedSurface, error) {
		return surface, nil
	}, testCollectorOptions())

	posts, err := runner.CollectAuthor(context.Background(), models.AuthorJob{
		AuthorID:      "acme",
		StartBoundary: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "1001", posts[0].ID)
	assert.True(t, surface.closed)
}

func TestFeedRunnerClosesSurfaceOnFailure(t *testing.T) {
	surface := &fakeFeedSurface{waitErr: fmt.Errorf("never became ready")}

	runner := NewFeedRunner(func(ctx context.Context, authorID string) (FeedSurface, error) {
		return surface, nil
	}, testCollectorOptions())

	_, err := runner.CollectAuthor(context.Background(), models.AuthorJob{AuthorID: "acme"})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLoadTimeout))
	assert.True(t, surface.closed)
}

func TestFeedRunnerOpenFailure(t *testing.T) {
	runner := NewFeedRunner(func(ctx context.Context, authorID string) (FeedSurface, error) {
		return nil, fmt.Errorf("no browser")
	}, testCollectorOptions())

	_, err := runner.CollectAuthor(context.Background(), models.AuthorJob{AuthorID: "acme"})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNavigation))
}
