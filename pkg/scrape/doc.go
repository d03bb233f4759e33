// Package scrape assembles the collection pipeline: it adapts browser
// surfaces into the orchestrator's runner, routes core transition
// points into structured logs, and drives a whole run from config to
// exported results.
//
// The core packages (collector, orchestrator, materializer) never log;
// each defines its own observer interface. LogObserver implements all
// three, so one instance wired through a run turns every attempt, stop
// reason, skipped candidate, and image fallback into a log line.
//
// Three pieces are exported:
//   - LogObserver: logger-backed implementation of all core observers
//   - FeedRunner: per-attempt page lifecycle around one collection
//   - Service: config-driven run (session, fan-out, images, export)
//
// Typical wiring:
//
//	svc := scrape.NewService(cfg, creds, log)
//	report, err := svc.Run(ctx, []string{"acmecorp", "globex"}, boundary)
//	if err != nil {
//		log.Fatal(err.Error())
//	}
package scrape
