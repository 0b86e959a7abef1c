// internal/queue/memory.go
package queue

import (
	"context"
	"sync"
	"time"
)

// InMemoryQueue delivers dispatch jobs to in-process subscribers. Used when no
// broker is configured (demo mode) and in tests.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers []func(DispatchJob) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{}
}

// Subscribe registers a handler invoked once per published job. A handler
// error is retried with backoff up to three times, then the job is dropped.
func (q *InMemoryQueue) Subscribe(h func(DispatchJob) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, h)
}

func (q *InMemoryQueue) Publish(ctx context.Context, job DispatchJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	handlers := make([]func(DispatchJob) error, len(q.handlers))
	copy(handlers, q.handlers)
	q.mu.Unlock()

	for _, h := range handlers {
		go process(h, job)
	}
	return nil
}

func process(h func(DispatchJob) error, job DispatchJob) {
	const maxRetries = 3
	for attempt := 0; ; attempt++ {
		if h(job) == nil {
			return
		}
		if attempt >= maxRetries {
			return
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
}

var _ Queue = (*InMemoryQueue)(nil)
var _ Queue = (*AMQPQueue)(nil)
