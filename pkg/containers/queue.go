package containers

// Queue abstracts a generics FIFO queue, which is thread-safe
type Queue[T any] interface {
	// Push appends elem at the back of the queue. It always succeeds.
	Push(elem T)
	// Pop removes the oldest element and returns it. The second return
	// value is false if and only if no element was available.
	Pop() (T, bool)
	// Peek returns the oldest element without removing it.
	Peek() (T, bool)
	// Size returns the number of stored elements. Implementations may
	// return an approximation while the queue is being mutated.
	Size() int
	// Empty reports whether the queue held no element at the instant it
	// was probed. The answer can be stale by the time the caller acts
	// on it, so it must never be used as a precondition guard.
	Empty() bool
}
