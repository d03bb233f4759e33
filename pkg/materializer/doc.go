// Package materializer rewrites the remote image references carried by
// collected posts into local files on disk.
//
// A run opens one network-capable rendering surface, downloads every
// image through it so requests carry the authenticated session's
// cookies, and writes the bytes under an author-scoped directory. Each
// downloaded reference is replaced with a relative path of the form
// <authorId>/<epochSeconds>-<ordinal><ext>. A failed download never
// removes the image entry and never aborts sibling images or posts;
// the original remote reference simply stays in place.
//
// The moving parts:
//   - Config: the enabled flag and destination root
//   - Surface and Opener: the fetch capability a run borrows
//   - Materializer: the run driver with per-image fallback
//   - Observer: notification hooks for stored and fallen-back images
//
// Usage:
//
//	opener := func(ctx context.Context) (materializer.Surface, error) {
//		return session.OpenFetcher(ctx)
//	}
//	m := materializer.New(opener, materializer.Config{
//		Enabled:         true,
//		DestinationRoot: "downloads",
//	}, materializer.Options{})
//
//	rewritten, err := m.Materialize(ctx, posts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// When Config.Enabled is false, Materialize returns its input
// untouched and never opens a surface.
package materializer
