package twitter

import (
	"fmt"
	"strings"
	"time"

	"xscraper/pkg/models"
)

// RawCandidate is one rendered post exactly as ExtractionScript sees it,
// before any validation
type RawCandidate struct {
	Permalink string   `json:"permalink"`
	Datetime  string   `json:"datetime"`
	Text      string   `json:"text"`
	Images    []string `json:"images"`
	Pinned    bool     `json:"pinned"`
}

// ParseCandidate validates a raw candidate against the target author and
// converts it into a PostRecord. Timelines surface reposts, replies and
// promoted posts alongside the author's own; anything without a numeric
// status id, a permalink confirming authorship, and a parseable timestamp
// is rejected.
func ParseCandidate(authorID string, raw RawCandidate) (models.PostRecord, error) {
	id, ok := PostIDFromPermalink(raw.Permalink)
	if !ok {
		return models.PostRecord{}, fmt.Errorf("no status id in permalink %q", raw.Permalink)
	}

	handle, ok := HandleFromPermalink(raw.Permalink)
	if !ok || !strings.EqualFold(handle, authorID) {
		return models.PostRecord{}, fmt.Errorf("post %s not authored by %s", id, authorID)
	}

	publishedAt, err := time.Parse(time.RFC3339, raw.Datetime)
	if err != nil {
		return models.PostRecord{}, fmt.Errorf("unparseable timestamp %q: %w", raw.Datetime, err)
	}

	images := make([]string, len(raw.Images))
	copy(images, raw.Images)

	return models.PostRecord{
		ID:          id,
		AuthorID:    authorID,
		Text:        raw.Text,
		PublishedAt: publishedAt,
		Images:      images,
		Pinned:      raw.Pinned,
	}, nil
}
