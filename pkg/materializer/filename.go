package materializer

import (
	"fmt"
	"net/url"
	"path"
	"time"
)

// DefaultExtension is used when a URL reveals no image type at all.
const DefaultExtension = ".jpg"

// Filename builds the local name for one downloaded image. ordinal is
// 1-based within the post. A zero publishedAt falls back to the
// current time so the name stays unique and sortable.
func Filename(publishedAt time.Time, ordinal int, rawURL string) string {
	epoch := publishedAt.Unix()
	if publishedAt.IsZero() {
		epoch = time.Now().Unix()
	}
	return fmt.Sprintf("%d-%d%s", epoch, ordinal, Extension(rawURL))
}

// Extension derives a file extension from an image URL. The URL path
// is preferred; media URLs often carry the type in a "format" query
// parameter instead of the path, so that is the second choice. When
// neither reveals anything the default applies.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultExtension
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	if format := u.Query().Get("format"); format != "" {
		return "." + format
	}
	return DefaultExtension
}
