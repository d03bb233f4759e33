package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures that surface while collecting feeds
type ErrorType string

const (
	ErrorTypeAuthorNotFound ErrorType = "author_not_found"
	ErrorTypeLoadTimeout    ErrorType = "load_timeout"
	ErrorTypeExtraction     ErrorType = "extraction"
	ErrorTypeImageDownload  ErrorType = "image_download"
	ErrorTypeRetryExhausted ErrorType = "retry_exhausted"
	ErrorTypeNavigation     ErrorType = "navigation"
	ErrorTypeSurface        ErrorType = "surface"
)

// Error carries the failure class plus the author whose run produced it
type Error struct {
	Type     ErrorType
	AuthorID string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.AuthorID != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.AuthorID, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AuthorNotFound reports a feed that the platform says does not exist
func AuthorNotFound(authorID string) *Error {
	return &Error{
		Type:     ErrorTypeAuthorNotFound,
		AuthorID: authorID,
		Message:  "author page shows no feed",
	}
}

// LoadTimeout reports a feed that never became ready within the deadline
func LoadTimeout(authorID string, err error) *Error {
	return &Error{
		Type:     ErrorTypeLoadTimeout,
		AuthorID: authorID,
		Message:  "feed did not become ready",
		Err:      err,
	}
}

// Extraction reports a failed in-page read of the rendered feed
func Extraction(authorID string, err error) *Error {
	return &Error{
		Type:     ErrorTypeExtraction,
		AuthorID: authorID,
		Message:  "failed to read rendered posts",
		Err:      err,
	}
}

// ImageDownload reports a single image that could not be materialized
func ImageDownload(authorID, url string, err error) *Error {
	return &Error{
		Type:     ErrorTypeImageDownload,
		AuthorID: authorID,
		Message:  fmt.Sprintf("failed to download %s", url),
		Err:      err,
	}
}

// RetryExhausted reports an author whose every collection attempt failed
func RetryExhausted(authorID string, attempts int, lastErr error) *Error {
	return &Error{
		Type:     ErrorTypeRetryExhausted,
		AuthorID: authorID,
		Message:  fmt.Sprintf("all %d attempts failed", attempts),
		Err:      lastErr,
	}
}

// Navigation reports a page load that failed outright
func Navigation(authorID string, err error) *Error {
	return &Error{
		Type:     ErrorTypeNavigation,
		AuthorID: authorID,
		Message:  "navigation failed",
		Err:      err,
	}
}

// Surface reports a rendering-surface failure outside the other classes.
// authorID may be empty for session-level failures.
func Surface(authorID string, err error) *Error {
	return &Error{
		Type:     ErrorTypeSurface,
		AuthorID: authorID,
		Message:  "rendering surface failure",
		Err:      err,
	}
}

// IsType reports whether err (or anything it wraps) carries the given type
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}
