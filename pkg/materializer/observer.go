package materializer

// Observer receives per-image outcomes during a materialization run.
// Implementations must be safe for reuse across runs.
type Observer interface {
	// ImageStored reports a download written to disk. localRef is the
	// relative reference that replaced the remote URL.
	ImageStored(authorID, remoteURL, localRef string)
	// ImageFallback reports an image whose download failed. The post
	// keeps the original remote reference.
	ImageFallback(authorID, remoteURL string, err error)
}

// NopObserver discards all notifications
type NopObserver struct{}

func (NopObserver) ImageStored(authorID, remoteURL, localRef string) {}

func (NopObserver) ImageFallback(authorID, remoteURL string, err error) {}
