// Package orchestrator fans author collection jobs out across concurrent
// workers, retries each job under a shared policy, and reassembles one
// result per job in input order.
//
// Architecture:
//
// The Orchestrator struct wraps a Runner, the single-attempt collection
// boundary implemented by pkg/scrape (open a fresh page, run the collector,
// close the page). Around that boundary it:
//   - schedules every job on an internal/pool worker pool
//   - drives the per-job retry state machine with backoff between attempts
//   - invokes the policy's OnBeforeRetry hook between attempts, containing
//     panics so a misbehaving hook can never abort a job
//   - degrades a job whose attempts are all spent to an empty result
//
// CollectAll never returns an error: absent data is signaled by an empty
// post list and a nil LatestPostTime, and the result slice always has one
// entry per input job, positionally aligned. CollectOne is the single-job
// convenience path and, unlike CollectAll, surfaces the final error after
// exhaustion.
//
// Usage:
//
//	o := orchestrator.New(runner, retry.DefaultPolicy(), orchestrator.Options{
//	    MaxConcurrent: 4,
//	})
//	results := o.CollectAll(ctx, jobs)
package orchestrator
