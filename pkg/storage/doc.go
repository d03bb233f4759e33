// Package storage is the disk layer under the materializer and the
// collection report.
//
// Everything a run persists flows through here:
//   - Creating the output root and per-author subdirectories
//   - Saving image bytes with atomic write operations
//   - Writing the JSON collection report
//
// All writes go through a temporary file followed by a rename, so a
// crash mid-write never leaves a partial image or report behind.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.WriteFile("acme/1767225600-1.jpg", imageBytes)
//	if err != nil {
//	    log.Printf("Failed to save image: %v", err)
//	}
package storage
