// Package parallel runs independent CPU-bound jobs, such as random playouts,
// on a fixed set of goroutines with bounded queueing.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolShutdown is returned when submitting to a pool that has been shut down.
var ErrPoolShutdown = errors.New("parallel: worker pool has been shut down")

// WorkerPool manages a fixed number of worker goroutines. Submit blocks
// while the queue is full, which keeps producers from running ahead of the
// workers.
type WorkerPool struct {
	workers      int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool starts a pool. If workers is 0 or negative it defaults to
// the number of CPUs.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := &WorkerPool{
		workers:      workers,
		taskChan:     make(chan func(), workers*2),
		shutdownChan: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}
	return pool
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int { return wp.workers }

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()
	for {
		select {
		case task := <-wp.taskChan:
			task()
		case <-wp.shutdownChan:
			// Drain what was accepted before shutdown.
			for {
				select {
				case task := <-wp.taskChan:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit queues a task. It blocks until there is room, the context is
// done, or the pool shuts down.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	if task == nil {
		return nil
	}
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops accepting tasks and waits for the workers to finish every
// task already queued. It is safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}

// ForEach runs fn(i) for i in [0, n) on the pool and waits for all of the
// submitted calls. It stops submitting when ctx is done and returns the
// context's error in that case; calls already submitted still complete.
func (wp *WorkerPool) ForEach(ctx context.Context, n int, fn func(i int)) error {
	var wg sync.WaitGroup
	var err error
	for i := 0; i < n; i++ {
		wg.Add(1)
		if err = wp.Submit(ctx, func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()
	return err
}
