package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrPipelineClosed is returned for work submitted after Shutdown.
var ErrPipelineClosed = errors.New("pipeline is closed")

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	jobs   chan func()
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts size workers. A size below one starts one worker.
func NewWorkerPool(size int) *WorkerPool {
	size = max(size, 1)
	p := &WorkerPool{
		jobs: make(chan func(), size),
	}

	p.wg.Add(size)
	for range size {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}

	return p
}

// Submit queues fn and returns a channel that is closed once fn has returned.
func (p *WorkerPool) Submit(ctx context.Context, fn func()) (<-chan struct{}, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrPipelineClosed
	}

	done := make(chan struct{})
	job := func() {
		defer close(done)
		fn()
	}

	select {
	case p.jobs <- job:
		return done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting jobs, lets queued jobs finish and waits for the workers.
// It is safe to call more than once.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Closed reports whether Shutdown was called.
func (p *WorkerPool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
