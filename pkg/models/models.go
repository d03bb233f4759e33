package models

import (
	"time"

	"github.com/samber/lo"
)

// PostRecord is a single post lifted out of a rendered feed.
type PostRecord struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publishedAt"`
	Images      []string  `json:"images"`

	// Pinned marks a post the author keeps at the top of the feed
	// regardless of its age. It only matters while collecting and is
	// not part of the exported record.
	Pinned bool `json:"-"`
}

// AuthorJob describes one author feed to collect. StartBoundary is an
// inclusive lower bound; posts published strictly before it are out of
// scope for the run.
type AuthorJob struct {
	AuthorID      string    `json:"authorId"`
	StartBoundary time.Time `json:"startBoundary"`
}

// AuthorResult is the outcome for one author. Posts is never nil; a
// failed or empty run yields an empty slice. LatestPostTime is nil when
// no posts were collected.
type AuthorResult struct {
	AuthorID       string       `json:"authorId"`
	Posts          []PostRecord `json:"posts"`
	LatestPostTime *time.Time   `json:"latestPostTime,omitempty"`
}

// NewAuthorResult builds a result from collected posts, computing the
// most recent publication time across them.
func NewAuthorResult(authorID string, posts []PostRecord) AuthorResult {
	if posts == nil {
		posts = []PostRecord{}
	}
	result := AuthorResult{
		AuthorID: authorID,
		Posts:    posts,
	}
	if latest := LatestTime(posts); !latest.IsZero() {
		result.LatestPostTime = &latest
	}
	return result
}

// EmptyAuthorResult is the degraded outcome for an author whose run
// failed outright.
func EmptyAuthorResult(authorID string) AuthorResult {
	return AuthorResult{
		AuthorID: authorID,
		Posts:    []PostRecord{},
	}
}

// LatestTime returns the newest PublishedAt among posts, or the zero
// time when posts is empty.
func LatestTime(posts []PostRecord) time.Time {
	if len(posts) == 0 {
		return time.Time{}
	}
	newest := lo.MaxBy(posts, func(a, b PostRecord) bool {
		return a.PublishedAt.After(b.PublishedAt)
	})
	return newest.PublishedAt
}
