package materializer

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/storage"
)

const (
	// DefaultTimeout bounds a single image download.
	DefaultTimeout = 30 * time.Second
	// DefaultFetchGap is the minimum pause between successive downloads,
	// keeping the run under the platform's media CDN throttling.
	DefaultFetchGap = 500 * time.Millisecond
)

// Config controls whether and where remote images are written locally
type Config struct {
	// Enabled turns materialization on. When false, Materialize returns
	// its input untouched.
	Enabled bool
	// DestinationRoot is the directory that receives author
	// subdirectories. Resolved to an absolute path at run start and
	// created if missing.
	DestinationRoot string
}

// Surface is the network capability one run downloads through. Fetches
// happen in an authenticated page context so they carry the session's
// cookies.
type Surface interface {
	FetchResource(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	Close() error
}

// Opener yields a fresh Surface for one run. The Materializer releases
// it when the run ends, whatever happened to individual images.
type Opener func(ctx context.Context) (Surface, error)

// Options tune a Materializer beyond the required Config
type Options struct {
	// Timeout bounds each image download. Zero means DefaultTimeout.
	Timeout time.Duration
	// Limiter spaces successive downloads. Nil means an interval
	// limiter at DefaultFetchGap.
	Limiter ratelimit.Limiter
	// Observer receives per-image outcomes. Nil means NopObserver.
	Observer Observer
}

// Materializer downloads post images and rewrites their references to
// local relative paths. A failed image keeps its original remote
// reference; siblings and other posts are never affected.
type Materializer struct {
	opener Opener
	cfg    Config
	opts   Options
}

// New creates a Materializer, filling zero option fields with defaults
func New(opener Opener, cfg Config, opts Options) *Materializer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.NewIntervalLimiter(DefaultFetchGap)
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Materializer{
		opener: opener,
		cfg:    cfg,
		opts:   opts,
	}
}

// Materialize returns a sequence of the same length and order as posts
// with image references rewritten to <authorId>/<epochSeconds>-
// <ordinal><ext>. The input is never mutated. When the config is
// disabled the input is returned as is; otherwise the run opens one
// surface, downloads every image through it, and closes it before
// returning. Only run-level setup can fail; image failures fall back
// to the original reference.
func (m *Materializer) Materialize(ctx context.Context, posts []models.PostRecord) ([]models.PostRecord, error) {
	if !m.cfg.Enabled {
		return posts, nil
	}

	out := make([]models.PostRecord, len(posts))
	for i, post := range posts {
		out[i] = clonePost(post)
	}
	if !hasImages(posts) {
		return out, nil
	}

	store, surface, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	m.rewriteAll(ctx, surface, store, out)
	return out, nil
}

// MaterializeResults applies Materialize across aggregated author
// results, sharing one surface for the whole batch
func (m *Materializer) MaterializeResults(ctx context.Context, results []models.AuthorResult) ([]models.AuthorResult, error) {
	if !m.cfg.Enabled {
		return results, nil
	}

	out := make([]models.AuthorResult, len(results))
	for i, result := range results {
		out[i] = cloneResult(result)
	}
	anyImages := lo.SomeBy(results, func(r models.AuthorResult) bool {
		return hasImages(r.Posts)
	})
	if !anyImages {
		return out, nil
	}

	store, surface, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	for i := range out {
		m.rewriteAll(ctx, surface, store, out[i].Posts)
	}
	return out, nil
}

// open resolves the destination root and acquires the run's surface
func (m *Materializer) open(ctx context.Context) (*storage.Manager, Surface, error) {
	root, err := filepath.Abs(m.cfg.DestinationRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve destination root: %w", err)
	}
	store, err := storage.NewManager(root)
	if err != nil {
		return nil, nil, err
	}
	surface, err := m.opener(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open fetch surface: %w", err)
	}
	return store, surface, nil
}

// rewriteAll downloads every image of every post in place. posts must
// already be clones owned by this run.
func (m *Materializer) rewriteAll(ctx context.Context, surface Surface, store *storage.Manager, posts []models.PostRecord) {
	for i := range posts {
		post := &posts[i]
		for idx, remote := range post.Images {
			local, err := m.materializeOne(ctx, surface, store, post, idx+1, remote)
			if err != nil {
				m.opts.Observer.ImageFallback(post.AuthorID, remote, err)
				continue
			}
			post.Images[idx] = local
			m.opts.Observer.ImageStored(post.AuthorID, remote, local)
		}
	}
}

// materializeOne downloads a single image and writes it under the
// author's subdirectory, returning the relative reference. ordinal is
// 1-based within the post.
func (m *Materializer) materializeOne(ctx context.Context, surface Surface, store *storage.Manager, post *models.PostRecord, ordinal int, remote string) (string, error) {
	if err := m.opts.Limiter.Wait(ctx); err != nil {
		return "", errors.ImageDownload(post.AuthorID, remote, err)
	}

	data, err := surface.FetchResource(ctx, remote, m.opts.Timeout)
	if err != nil {
		return "", errors.ImageDownload(post.AuthorID, remote, err)
	}
	if len(data) == 0 {
		return "", errors.ImageDownload(post.AuthorID, remote, fmt.Errorf("empty response body"))
	}

	rel := path.Join(post.AuthorID, Filename(post.PublishedAt, ordinal, remote))
	if err := store.WriteFile(rel, data); err != nil {
		return "", errors.ImageDownload(post.AuthorID, remote, err)
	}
	return rel, nil
}

func clonePost(post models.PostRecord) models.PostRecord {
	clone := post
	clone.Images = make([]string, len(post.Images))
	copy(clone.Images, post.Images)
	return clone
}

func cloneResult(result models.AuthorResult) models.AuthorResult {
	clone := result
	clone.Posts = make([]models.PostRecord, len(result.Posts))
	for i, post := range result.Posts {
		clone.Posts[i] = clonePost(post)
	}
	if result.LatestPostTime != nil {
		t := *result.LatestPostTime
		clone.LatestPostTime = &t
	}
	return clone
}

func hasImages(posts []models.PostRecord) bool {
	return lo.SomeBy(posts, func(p models.PostRecord) bool {
		return len(p.Images) > 0
	})
}
