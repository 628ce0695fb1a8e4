package containers

import (
	"sync"
)

// SliceQueue is a FIFO queue backed by a Go slice and a mutex. It is the
// plain, lock-based sibling of LinkedQueue behind the same Queue interface
// and doubles as the reference model in differential tests.
type SliceQueue[T any] struct {
	// C carries one coalesced signal per transition to a non-empty queue,
	// so a consumer can block on it instead of polling Pop. The channel
	// never closes.
	C chan struct{}

	mu    sync.Mutex
	elems []T
}

var _ Queue[int] = &SliceQueue[int]{}

// NewSliceQueue creates an empty SliceQueue.
func NewSliceQueue[T any]() *SliceQueue[T] {
	return &SliceQueue[T]{
		C: make(chan struct{}, 1),
	}
}

// Push appends elem and signals C without ever blocking on it.
func (q *SliceQueue[T]) Push(elem T) {
	q.mu.Lock()
	q.elems = append(q.elems, elem)
	q.mu.Unlock()

	select {
	case q.C <- struct{}{}:
	default:
	}
}

// Pop removes the oldest element. When elements remain afterwards it
// re-arms C, so a consumer that drained only partially is woken again.
func (q *SliceQueue[T]) Pop() (T, bool) {
	var zero T

	q.mu.Lock()
	if len(q.elems) == 0 {
		q.mu.Unlock()
		return zero, false
	}
	elem := q.elems[0]
	q.elems[0] = zero
	q.elems = q.elems[1:]
	remaining := len(q.elems)
	if remaining == 0 {
		// release the backing array once a burst has drained
		q.elems = nil
	}
	q.mu.Unlock()

	if remaining > 0 {
		select {
		case q.C <- struct{}{}:
		default:
		}
	}
	return elem, true
}

// Peek returns the oldest element without removing it.
func (q *SliceQueue[T]) Peek() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.elems) == 0 {
		return zero, false
	}
	return q.elems[0], true
}

// Size returns the exact number of stored elements.
func (q *SliceQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.elems)
}

// Empty reports whether the queue holds no element.
func (q *SliceQueue[T]) Empty() bool {
	return q.Size() == 0
}
