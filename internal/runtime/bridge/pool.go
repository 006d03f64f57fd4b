// Package bridge adapts the blocking, thread-affine broker client into
// awaitable operations. Every blocking client call is hosted on a small
// bounded worker pool; the calling goroutine never touches the client
// directly, which serialises access to the client's internal state.
package bridge

import (
	"context"
	"sync"

	errspkg "github.com/telembus/kafkabench/internal/runtime/errors"
)

// Pool is a fixed-size worker pool reused across calls.
type Pool struct {
	jobs   chan func()
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewPool starts size workers. Size must be at least 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		jobs:   make(chan func()),
		closed: make(chan struct{}),
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.closed:
			return
		}
	}
}

// Run dispatches fn to a worker and awaits its completion. The context only
// bounds the wait for a free worker; once dispatched, the call runs to
// completion. Cancellation mid-call is fn's own responsibility.
func (p *Pool) Run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	job := func() { done <- fn() }

	select {
	case p.jobs <- job:
	case <-p.closed:
		return errspkg.ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-done
}

// Close stops the workers. Jobs already dispatched finish first.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.closed) })
	p.wg.Wait()
}
