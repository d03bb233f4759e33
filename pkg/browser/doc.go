// Package browser owns the Chromium side of a run: launching or
// attaching to a browser, installing the session cookies, and handing
// out pages wrapped as rendering surfaces.
//
// A Session is the owned composite around the vendor objects (rod
// browser, launcher, config); nothing is ever attached to or mutated
// on the vendor types themselves. Surfaces derived from the session
// implement the capability interfaces the collector and materializer
// consume: structured eval, selector probes, visibility waits,
// scrolling, and in-page resource fetches.
//
// The package exports:
//   - Session: browser lifecycle plus cookie bootstrap
//   - Surface: one rod page behind the core capability interfaces
//   - Resource blocking for heavy asset classes (fonts, media)
//
// Usage:
//
//	session, err := browser.NewSession(ctx, cfg.Browser, creds, logger.GetLogger())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer session.Close()
//
//	surface, err := session.OpenFeed(ctx, "acmecorp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer surface.Close()
package browser
