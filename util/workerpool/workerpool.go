// Package workerpool provides a fixed-size goroutine pool. The dispatch
// server runs frame preprocessing (JPEG decode + rescale) on a pool so a
// burst of cameras cannot spawn unbounded goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Task represents a unit of work to be executed by the worker pool
type Task func(ctx context.Context) error

// WorkerPool is a fixed-size pool of goroutines that execute tasks
type WorkerPool struct {
	numWorkers int
	tasks      chan taskWrapper
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// taskWrapper wraps a task with its result channel
type taskWrapper struct {
	task   Task
	result chan error
}

// New creates a new worker pool with the specified number of workers.
// The provided context is the base context for the pool.
func New(ctx context.Context, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	// Buffer of numWorkers*2 allows some queuing while workers are busy,
	// reducing submission blocking
	wp := &WorkerPool{
		numWorkers: numWorkers,
		tasks:      make(chan taskWrapper, numWorkers*2),
		ctx:        ctx,
		cancel:     cancel,
	}

	return wp
}

// Start initializes and starts all worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker is the main loop for each worker goroutine
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case tw, ok := <-wp.tasks:
			if !ok {
				return
			}
			err := tw.task(wp.ctx)
			select {
			case tw.result <- err:
			case <-wp.ctx.Done():
				return
			}
		}
	}
}

// Submit adds a task to the worker pool for execution and returns a channel
// that will receive the result. If the pool has been stopped, the channel
// contains the pool context's error.
func (wp *WorkerPool) Submit(task Task) <-chan error {
	result := make(chan error, 1)

	select {
	case <-wp.ctx.Done():
		result <- wp.ctx.Err()
		return result
	default:
	}

	tw := taskWrapper{
		task:   task,
		result: result,
	}

	select {
	case <-wp.ctx.Done():
		result <- wp.ctx.Err()
	case wp.tasks <- tw:
	}

	return result
}

// Stop shuts down the worker pool and waits for all workers to exit.
// Queued tasks that have not started are abandoned.
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}
