package materializer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
)

type fakeSurface struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	fetched   []string
	closed    bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
	}
}

func (f *fakeSurface) FetchResource(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	if data, ok := f.responses[url]; ok {
		return data, nil
	}
	return []byte("image-bytes"), nil
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeLimiter struct {
	waits int
}

func (f *fakeLimiter) Allow() bool { return true }

func (f *fakeLimiter) Wait(ctx context.Context) error {
	f.waits++
	return nil
}

func (f *fakeLimiter) Reset() {}

type recObserver struct {
	stored    []string
	fallbacks []string
	errs      []error
}

func (r *recObserver) ImageStored(authorID, remoteURL, localRef string) {
	r.stored = append(r.stored, localRef)
}

func (r *recObserver) ImageFallback(authorID, remoteURL string, err error) {
	r.fallbacks = append(r.fallbacks, remoteURL)
	r.errs = append(r.errs, err)
}

func openerFor(surface *fakeSurface, opened *int) Opener {
	return func(ctx context.Context) (Surface, error) {
		*opened++
		return surface, nil
	}
}

func TestMaterializeDisabledPassThrough(t *testing.T) {
	posts := []models.PostRecord{
		{
			ID:       "1",
			AuthorID: "acme",
			Images:   []string{"https://pbs.twimg.com/media/a.jpg"},
		},
	}

	opened := 0
	m := New(openerFor(newFakeSurface(), &opened), Config{Enabled: false}, Options{})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	assert.Equal(t, posts, out)
	assert.Zero(t, opened)
}

func TestMaterializeRewritesReferences(t *testing.T) {
	published := time.Date(2026, 1, 12, 8, 30, 0, 0, time.UTC)
	root := t.TempDir()

	surface := newFakeSurface()
	surface.responses["https://pbs.twimg.com/media/first.jpg"] = []byte("first-bytes")
	surface.responses["https://pbs.twimg.com/media/second?format=png"] = []byte("second-bytes")

	posts := []models.PostRecord{
		{
			ID:          "1",
			AuthorID:    "acme",
			PublishedAt: published,
			Images: []string{
				"https://pbs.twimg.com/media/first.jpg",
				"https://pbs.twimg.com/media/second?format=png",
			},
		},
	}

	opened := 0
	m := New(openerFor(surface, &opened), Config{Enabled: true, DestinationRoot: root}, Options{
		Limiter: &fakeLimiter{},
	})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	require.Len(t, out, 1)

	epoch := published.Unix()
	assert.Equal(t, fmt.Sprintf("acme/%d-1.jpg", epoch), out[0].Images[0])
	assert.Equal(t, fmt.Sprintf("acme/%d-2.png", epoch), out[0].Images[1])

	data, err := os.ReadFile(filepath.Join(root, "acme", fmt.Sprintf("%d-1.jpg", epoch)))
	require.NoError(t, err)
	assert.Equal(t, []byte("first-bytes"), data)

	assert.Equal(t, 1, opened)
	assert.True(t, surface.closed)
}

func TestMaterializePartialFailure(t *testing.T) {
	published := time.Date(2026, 1, 12, 8, 30, 0, 0, time.UTC)
	root := t.TempDir()

	surface := newFakeSurface()
	surface.errs["https://pbs.twimg.com/media/b.jpg"] = fmt.Errorf("status 404")

	posts := []models.PostRecord{
		{
			ID:          "1",
			AuthorID:    "acme",
			PublishedAt: published,
			Images: []string{
				"https://pbs.twimg.com/media/a.jpg",
				"https://pbs.twimg.com/media/b.jpg",
				"https://pbs.twimg.com/media/c.jpg",
			},
		},
	}

	obs := &recObserver{}
	opened := 0
	m := New(openerFor(surface, &opened), Config{Enabled: true, DestinationRoot: root}, Options{
		Limiter:  &fakeLimiter{},
		Observer: obs,
	})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	require.Len(t, out[0].Images, 3)

	epoch := published.Unix()
	// The ordinal follows the image's position, not the download count.
	assert.Equal(t, fmt.Sprintf("acme/%d-1.jpg", epoch), out[0].Images[0])
	assert.Equal(t, "https://pbs.twimg.com/media/b.jpg", out[0].Images[1])
	assert.Equal(t, fmt.Sprintf("acme/%d-3.jpg", epoch), out[0].Images[2])

	assert.Len(t, obs.stored, 2)
	require.Len(t, obs.fallbacks, 1)
	assert.Equal(t, "https://pbs.twimg.com/media/b.jpg", obs.fallbacks[0])
	assert.True(t, errors.IsType(obs.errs[0], errors.ErrorTypeImageDownload))
}

func TestMaterializeDoesNotMutateInput(t *testing.T) {
	posts := []models.PostRecord{
		{
			ID:          "1",
			AuthorID:    "acme",
			PublishedAt: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			Images:      []string{"https://pbs.twimg.com/media/a.jpg"},
		},
	}

	opened := 0
	m := New(openerFor(newFakeSurface(), &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{
		Limiter: &fakeLimiter{},
	})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	assert.Equal(t, "https://pbs.twimg.com/media/a.jpg", posts[0].Images[0])
	assert.NotEqual(t, posts[0].Images[0], out[0].Images[0])
}

func TestMaterializeZeroImages(t *testing.T) {
	posts := []models.PostRecord{
		{ID: "1", AuthorID: "acme", Text: "no media here"},
	}

	opened := 0
	m := New(openerFor(newFakeSurface(), &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
	assert.Empty(t, out[0].Images)
	// Nothing to download, so no surface is ever opened.
	assert.Zero(t, opened)
}

func TestMaterializeOpenerFailure(t *testing.T) {
	opener := func(ctx context.Context) (Surface, error) {
		return nil, fmt.Errorf("browser gone")
	}

	posts := []models.PostRecord{
		{ID: "1", AuthorID: "acme", Images: []string{"https://pbs.twimg.com/media/a.jpg"}},
	}

	m := New(opener, Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{})

	out, err := m.Materialize(context.Background(), posts)

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "browser gone")
}

func TestMaterializeEmptyResponseFallsBack(t *testing.T) {
	surface := newFakeSurface()
	surface.responses["https://pbs.twimg.com/media/a.jpg"] = []byte{}

	posts := []models.PostRecord{
		{
			ID:          "1",
			AuthorID:    "acme",
			PublishedAt: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			Images:      []string{"https://pbs.twimg.com/media/a.jpg"},
		},
	}

	obs := &recObserver{}
	opened := 0
	m := New(openerFor(surface, &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{
		Limiter:  &fakeLimiter{},
		Observer: obs,
	})

	out, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	assert.Equal(t, "https://pbs.twimg.com/media/a.jpg", out[0].Images[0])
	assert.Len(t, obs.fallbacks, 1)
}

func TestMaterializePacesEveryAttempt(t *testing.T) {
	surface := newFakeSurface()
	surface.errs["https://pbs.twimg.com/media/b.jpg"] = fmt.Errorf("timeout")

	posts := []models.PostRecord{
		{
			ID:          "1",
			AuthorID:    "acme",
			PublishedAt: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			Images: []string{
				"https://pbs.twimg.com/media/a.jpg",
				"https://pbs.twimg.com/media/b.jpg",
				"https://pbs.twimg.com/media/c.jpg",
			},
		},
	}

	limiter := &fakeLimiter{}
	opened := 0
	m := New(openerFor(surface, &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{
		Limiter: limiter,
	})

	_, err := m.Materialize(context.Background(), posts)

	require.NoError(t, err)
	// Failed downloads still pace; the limiter runs before each attempt.
	assert.Equal(t, 3, limiter.waits)
}

func TestMaterializeResultsDeepCopy(t *testing.T) {
	latest := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	results := []models.AuthorResult{
		{
			AuthorID:       "acme",
			Posts:          []models.PostRecord{{ID: "1", AuthorID: "acme"}},
			LatestPostTime: &latest,
		},
	}

	opened := 0
	m := New(openerFor(newFakeSurface(), &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{})

	out, err := m.MaterializeResults(context.Background(), results)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "acme", out[0].AuthorID)
	require.NotNil(t, out[0].LatestPostTime)
	assert.True(t, out[0].LatestPostTime.Equal(latest))
	assert.NotSame(t, results[0].LatestPostTime, out[0].LatestPostTime)
}

func TestMaterializeResultsSharesOneSurface(t *testing.T) {
	surface := newFakeSurface()
	results := []models.AuthorResult{
		{
			AuthorID: "acme",
			Posts: []models.PostRecord{
				{
					ID:          "1",
					AuthorID:    "acme",
					PublishedAt: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
					Images:      []string{"https://pbs.twimg.com/media/a.jpg"},
				},
			},
		},
		{
			AuthorID: "globex",
			Posts: []models.PostRecord{
				{
					ID:          "2",
					AuthorID:    "globex",
					PublishedAt: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
					Images:      []string{"https://pbs.twimg.com/media/b.jpg"},
				},
			},
		},
	}

	opened := 0
	m := New(openerFor(surface, &opened), Config{Enabled: true, DestinationRoot: t.TempDir()}, Options{
		Limiter: &fakeLimiter{},
	})

	out, err := m.MaterializeResults(context.Background(), results)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, opened)
	assert.Len(t, surface.fetched, 2)
	assert.True(t, surface.closed)

	for i, result := range out {
		assert.NotContains(t, result.Posts[0].Images[0], "https://")
		assert.Contains(t, result.Posts[0].Images[0], result.AuthorID+"/")
		assert.Equal(t, results[i].AuthorID, result.AuthorID)
	}
}
