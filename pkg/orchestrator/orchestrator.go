package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"xscraper/internal/pool"
	"xscraper/pkg/errors"
	"xscraper/pkg/models"
	"xscraper/pkg/retry"
)

// Runner executes one collection attempt for one author. pkg/scrape
// implements it by opening a fresh page per attempt, so concurrent jobs
// never share rendering state.
type Runner interface {
	CollectAuthor(ctx context.Context, job models.AuthorJob) ([]models.PostRecord, error)
}

// Options tunes an Orchestrator. The zero value runs every job on its own
// worker and stays silent.
type Options struct {
	// MaxConcurrent bounds how many jobs run at once. Zero or negative
	// means one worker per job.
	MaxConcurrent int
	Observer      Observer
}

// Orchestrator runs many author jobs concurrently under one retry policy
type Orchestrator struct {
	runner Runner
	policy retry.Policy
	opts   Options
}

// New creates an Orchestrator. The retry policy is bound once here; use
// the package-level CollectAll for a per-call policy.
func New(runner Runner, policy retry.Policy, opts Options) *Orchestrator {
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	return &Orchestrator{
		runner: runner,
		policy: policy,
		opts:   opts,
	}
}

// CollectAll executes every job and returns exactly one result per job,
// positionally aligned with jobs regardless of completion order. It never
// returns an error: a job whose attempts are all spent yields an empty
// result instead.
func (o *Orchestrator) CollectAll(ctx context.Context, jobs []models.AuthorJob) []models.AuthorResult {
	results := make([]models.AuthorResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	// Pre-fill so every slot carries its author even if the pool is torn
	// down mid-run by cancellation.
	for i, job := range jobs {
		results[i] = models.EmptyAuthorResult(job.AuthorID)
	}

	workers := len(jobs)
	if o.opts.MaxConcurrent > 0 && o.opts.MaxConcurrent < workers {
		workers = o.opts.MaxConcurrent
	}

	p := pool.New(ctx, workers, func(ctx context.Context, job pool.Job[models.AuthorJob]) (models.AuthorResult, error) {
		return o.collect(ctx, job.Payload), nil
	})
	p.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range p.Results() {
			results[result.Job.Index] = result.Value
		}
	}()

	for i, job := range jobs {
		if err := p.Submit(pool.Job[models.AuthorJob]{Index: i, Payload: job}); err != nil {
			// Pool is shutting down; the pre-filled empty result stands.
			break
		}
	}

	p.Stop()
	wg.Wait()

	return results
}

// CollectOne runs the retry loop for a single job. Unlike CollectAll it
// re-returns the final error once every attempt is spent.
func (o *Orchestrator) CollectOne(ctx context.Context, job models.AuthorJob) (models.AuthorResult, error) {
	posts, err := o.runAttempts(ctx, job)
	if err != nil {
		return models.EmptyAuthorResult(job.AuthorID), err
	}
	return models.NewAuthorResult(job.AuthorID, posts), nil
}

// collect degrades a spent job to an empty result
func (o *Orchestrator) collect(ctx context.Context, job models.AuthorJob) models.AuthorResult {
	posts, err := o.runAttempts(ctx, job)
	if err != nil {
		return models.EmptyAuthorResult(job.AuthorID)
	}
	return models.NewAuthorResult(job.AuthorID, posts)
}

// runAttempts drives the per-job retry state machine. Any attempt may
// succeed and return posts; once every attempt has failed the last error
// comes back wrapped as a retry-exhausted error.
func (o *Orchestrator) runAttempts(ctx context.Context, job models.AuthorJob) ([]models.PostRecord, error) {
	attempts := o.policy.Attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		o.opts.Observer.AttemptStarted(job.AuthorID, attempt, attempts)

		posts, err := o.runner.CollectAuthor(ctx, job)
		if err == nil {
			return posts, nil
		}
		lastErr = err
		o.opts.Observer.AttemptFailed(job.AuthorID, attempt, err)

		if attempt == attempts {
			break
		}

		o.invokeHook(job.AuthorID, attempt, err)

		if err := retry.Wait(ctx, o.policy.Delay(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	o.opts.Observer.JobExhausted(job.AuthorID, attempts, lastErr)
	return nil, errors.RetryExhausted(job.AuthorID, attempts, lastErr)
}

// invokeHook calls the policy's OnBeforeRetry hook. A panicking hook is
// contained and reported; it never aborts the retry loop.
func (o *Orchestrator) invokeHook(authorID string, attempt int, lastErr error) {
	hook := o.policy.OnBeforeRetry
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.opts.Observer.HookFailed(authorID, attempt, fmt.Errorf("hook panicked: %v", r))
		}
	}()
	hook(authorID, attempt, lastErr)
}

// CollectAll constructs a one-shot Orchestrator with the given policy and
// runs it. Semantics are identical to the method form; the policy is
// simply scoped to this call.
func CollectAll(ctx context.Context, runner Runner, jobs []models.AuthorJob, policy retry.Policy, opts Options) []models.AuthorResult {
	return New(runner, policy, opts).CollectAll(ctx, jobs)
}
