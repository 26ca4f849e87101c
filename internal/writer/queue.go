// internal/writer/queue.go
package writer

import (
	"context"
	"sync"
	"time"
)

// Queue is the unbounded FIFO between the broker callback and the
// scheduler. Push never blocks; Pop is only called by the scheduler.
type Queue struct {
	mu     sync.Mutex
	items  []Request
	notify chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Push appends r and wakes a waiting Pop.
func (q *Queue) Push(r Request) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// PushFront puts r back at the head, ahead of every pending request.
func (q *Queue) PushFront(r Request) {
	q.mu.Lock()
	q.items = append([]Request{r}, q.items...)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest request. It waits at most wait for one to
// arrive; wait <= 0 never blocks. ok is false when nothing arrived in
// time or ctx was cancelled.
func (q *Queue) Pop(ctx context.Context, wait time.Duration) (r Request, ok bool) {
	if r, ok := q.tryPop(); ok {
		return r, true
	}
	if wait <= 0 {
		return Request{}, false
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Request{}, false
		case <-timer.C:
			return q.tryPop()
		case <-q.notify:
			if r, ok := q.tryPop(); ok {
				return r, true
			}
		}
	}
}

// Len is the number of pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) tryPop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Request{}, false
	}
	r := q.items[0]
	q.items[0] = Request{}
	q.items = q.items[1:]
	return r, true
}
