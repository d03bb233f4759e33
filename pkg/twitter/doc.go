// Package twitter defines the DOM contract with X's rendered timeline.
//
// This package includes:
//   - Selectors for the stable data-testid attributes X ships on its
//     timeline components
//   - The in-page extraction script that reads every rendered post in
//     one evaluation round trip
//   - Go-side candidate validation (permalink id, authorship, timestamp)
//   - Helper functions for constructing timeline and permalink URLs
//
// Example usage:
//
//	raw := twitter.RawCandidate{
//	    Permalink: "/acme/status/1877012345678901234",
//	    Datetime:  "2026-01-12T08:30:00.000Z",
//	    Text:      "release day",
//	}
//
//	post, err := twitter.ParseCandidate("acme", raw)
//	if err != nil {
//	    // Candidate is a repost, a reply by someone else, or malformed;
//	    // skip it and move on.
//	}
//
// The extraction script is evaluated by pkg/browser; everything that can be
// validated is validated in Go so the in-page code stays dumb.
package twitter
