package twitter

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for X
	BaseURL = "https://x.com"

	// MaxHandleLength is the maximum length of an X handle
	MaxHandleLength = 15
)

// FeedURL constructs the timeline URL for an author's handle.
// An empty base falls back to BaseURL; a configured base (for example a
// mirror host) is used verbatim.
func FeedURL(base, handle string) string {
	if base == "" {
		base = BaseURL
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(base, "/"), handle)
}

// StatusURL constructs the canonical permalink for a post
func StatusURL(handle, postID string) string {
	if handle == "" || postID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/status/%s", BaseURL, handle, postID)
}

// PostIDFromPermalink extracts the numeric status id from a post permalink.
// Permalinks look like /<handle>/status/<id> and may be absolute, carry
// trailing segments such as /photo/1, or carry query parameters.
func PostIDFromPermalink(permalink string) (string, bool) {
	segments := pathSegments(permalink)
	for i, segment := range segments {
		if segment != "status" || i+1 >= len(segments) {
			continue
		}
		if id := segments[i+1]; isDigits(id) {
			return id, true
		}
	}
	return "", false
}

// HandleFromPermalink extracts the author handle from a post permalink,
// the path segment immediately before "status"
func HandleFromPermalink(permalink string) (string, bool) {
	segments := pathSegments(permalink)
	for i, segment := range segments {
		if segment == "status" && i > 0 {
			return segments[i-1], true
		}
	}
	return "", false
}

// pathSegments splits a permalink's path into its non-empty segments,
// tolerating absolute URLs and query strings
func pathSegments(permalink string) []string {
	if u, err := url.Parse(permalink); err == nil {
		permalink = u.Path
	}

	var segments []string
	for _, segment := range strings.Split(permalink, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

// IsValidHandle checks if a handle is valid according to X rules
func IsValidHandle(handle string) bool {
	if handle == "" || len(handle) > MaxHandleLength {
		return false
	}

	// X handles can only contain letters, numbers, and underscores
	for _, char := range handle {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeHandle strips decoration from a handle and lowercases it.
// Handles are case-insensitive on X; the lowercase form is canonical here.
func SanitizeHandle(handle string) string {
	if handle == "" {
		return ""
	}

	// A leading @ is how people write handles, not part of the handle
	if handle[0] == '@' {
		handle = handle[1:]
	}

	for len(handle) > 0 && (handle[len(handle)-1] == '/' || handle[len(handle)-1] == ' ') {
		handle = handle[:len(handle)-1]
	}

	return strings.ToLower(handle)
}
