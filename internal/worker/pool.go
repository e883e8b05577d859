// Package worker implements a bounded goroutine pool for running extraction
// jobs concurrently inside the worker process.
package worker

import (
	"context"
	"log/slog"
	"sync"
)

type task struct {
	ctx context.Context
	fn  func(context.Context)
}

// Pool manages a fixed set of worker goroutines draining a shared task
// channel. The channel buffer is intentionally small so a saturated pool
// pushes back on the submitter instead of queueing unbounded work.
type Pool struct {
	workers int
	tasks   chan task
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewPool creates a pool with the given number of workers. Call Start to
// launch the goroutines.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan task, workers), // small buffer for backpressure
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues fn for execution, blocking while the pool is saturated.
// It returns false when ctx is cancelled before the task is accepted.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) bool {
	select {
	case p.tasks <- task{ctx: ctx, fn: fn}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Shutdown stops accepting tasks and waits for in-flight tasks to finish.
// Safe to call once, after all submitters have stopped.
func (p *Pool) Shutdown() {
	close(p.tasks)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for t := range p.tasks {
		if t.ctx.Err() != nil {
			continue // task cancelled while queued
		}
		t.fn(t.ctx)
	}
	p.logger.Info("worker exiting", slog.Int("worker_id", id))
}
