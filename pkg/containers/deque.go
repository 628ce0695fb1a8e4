package containers

import (
	"sync"

	"github.com/edwingeng/deque"
)

// Deque adapts a chunked deque to the Queue interface. The deque amortizes
// the copy cost that SliceQueue pays on long bursts, at the price of boxing
// every element; it stays a single-ended FIFO here, front removal and back
// insertion only.
type Deque[T any] struct {
	mu sync.Mutex
	dq deque.Deque
}

var _ Queue[int] = &Deque[int]{}

// NewDeque creates an empty Deque.
func NewDeque[T any]() *Deque[T] {
	return &Deque[T]{
		dq: deque.NewDeque(),
	}
}

// Push appends elem at the back of the queue.
func (q *Deque[T]) Push(elem T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dq.PushBack(elem)
}

// Pop removes the oldest element and returns it.
func (q *Deque[T]) Pop() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.dq.Empty() {
		return zero, false
	}
	return q.dq.PopFront().(T), true
}

// Peek returns the oldest element without removing it.
func (q *Deque[T]) Peek() (T, bool) {
	var zero T
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.dq.Empty() {
		return zero, false
	}
	return q.dq.Front().(T), true
}

// Size returns the exact number of stored elements.
func (q *Deque[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dq.Len()
}

// Empty reports whether the queue holds no element.
func (q *Deque[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dq.Empty()
}
