// Package pool provides a generic fan-out worker pool with indexed jobs,
// so callers can reassemble results in submission order regardless of
// completion order.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job pairs a payload with its position in the submitting sequence
type Job[P any] struct {
	Index   int
	Payload P
}

// Result carries one job's outcome
type Result[P, R any] struct {
	Job      Job[P]
	Value    R
	Err      error
	Duration time.Duration
}

// Handler processes one job. It runs on a worker goroutine and must be
// safe for concurrent use.
type Handler[P, R any] func(ctx context.Context, job Job[P]) (R, error)

// Pool manages a fixed set of worker goroutines draining a job queue
type Pool[P, R any] struct {
	numWorkers  int
	handler     Handler[P, R]
	jobQueue    chan Job[P]
	resultQueue chan Result[P, R]
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a worker pool. Workers inherit ctx; cancelling it aborts
// jobs that honor their context.
func New[P, R any](ctx context.Context, numWorkers int, handler Handler[P, R]) *Pool[P, R] {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool[P, R]{
		numWorkers:  numWorkers,
		handler:     handler,
		jobQueue:    make(chan Job[P], numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Result[P, R], numWorkers),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches all workers
func (p *Pool[P, R]) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop closes the job queue, waits for the workers to drain it, then
// closes the result queue. Submit must not be called after Stop.
func (p *Pool[P, R]) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()
}

// Submit adds a job to the queue, blocking while the queue is full
func (p *Pool[P, R]) Submit(job Job[P]) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the channel results are delivered on. It is closed by
// Stop once every submitted job has completed.
func (p *Pool[P, R]) Results() <-chan Result[P, R] {
	return p.resultQueue
}

// QueueSize returns the current number of queued jobs
func (p *Pool[P, R]) QueueSize() int {
	return len(p.jobQueue)
}

func (p *Pool[P, R]) worker() {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		value, err := p.handler(p.ctx, job)
		result := Result[P, R]{
			Job:      job,
			Value:    value,
			Err:      err,
			Duration: time.Since(start),
		}

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}
