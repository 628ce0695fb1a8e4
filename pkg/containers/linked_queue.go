package containers

import (
	"github.com/benbjohnson/clock"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	derror "github.com/hanfei1991/conqueue/pkg/errors"
)

// node is one link of the queue chain. value is written exactly once,
// before the node is published by a linking CAS, so any goroutine that
// reaches the node through a next pointer observes the value fully
// initialized. next is the only field mutated afterwards.
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// LinkedQueue is an unbounded multi-producer multi-consumer FIFO queue
// that synchronizes purely through compare-and-swap on node references,
// with no mutual exclusion locks. Any number of goroutines may Push and
// Pop concurrently on the same instance.
//
// The chain always starts with a dummy node: head designates the most
// recently consumed node (or the original dummy), and the oldest live
// element sits in head's successor. tail designates the last node reachable
// from head but is allowed to lag behind the true end, because advancing it
// after a successful link is a separate best-effort step; every operation
// that observes the lag repairs it in passing. Elements become visible in
// the order their linking CAS succeeds, which is the queue's FIFO order.
//
// Nodes unlinked by Pop stay structurally intact while any concurrent
// reader still holds a reference to them; the garbage collector reclaims
// them only after the last reference drops. That also rules out the ABA
// hazard of a node address being recycled under a pending CAS, so the
// protocol needs no hazard pointers or epoch scheme here.
//
// The progress guarantee is lock-freedom, not wait-freedom: some goroutine
// always completes in a bounded number of steps, while an individual
// goroutine may retry arbitrarily often under contention. The backoff
// schedule (see BackoffOptions) bounds the CPU burned by those retries and
// by default only yields, so operations never sleep unless configured to.
type LinkedQueue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]

	// size trails the true element count while operations are in flight;
	// it is maintained for the Queue interface, not for synchronization.
	size atomic.Int64

	backoffOpts BackoffOptions
	clk         clock.Clock
}

var _ Queue[int] = &LinkedQueue[int]{}

// NewLinkedQueue creates an empty LinkedQueue. Both cursors start out
// designating a freshly allocated dummy node. It never fails.
func NewLinkedQueue[T any](opts ...LinkedQueueOption) *LinkedQueue[T] {
	o := linkedQueueOptions{
		backoff: *DefaultBackoffOptions(),
		clk:     clock.New(),
	}
	for _, f := range opts {
		f(&o)
	}

	q := &LinkedQueue[T]{
		backoffOpts: o.backoff,
		clk:         o.clk,
	}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push appends elem at the back of the queue. It always succeeds, retrying
// internally until its linking CAS wins.
func (q *LinkedQueue[T]) Push(elem T) {
	n := &node[T]{value: elem}
	bo := q.newBackoff()

	var t *node[T]
	for {
		t = q.tail.Load()
		if t == nil {
			q.corrupted("tail cursor is nil")
		}
		next := t.next.Load()
		if t != q.tail.Load() {
			// the snapshot is torn: tail moved between the two reads
			bo.wait()
			continue
		}
		if next != nil {
			// tail lags behind the true end. Help it forward and retry;
			// the outcome is ignored because a competing helper is
			// equally entitled to win.
			q.tail.CompareAndSwap(t, next)
			continue
		}
		if t.next.CompareAndSwap(nil, n) {
			// linked: the element is published and the push has
			// logically completed
			break
		}
		bo.wait()
	}

	// Best-effort swing of tail from the new node's predecessor. Losing
	// this race is harmless: whoever got in between has already advanced
	// tail, or the next operation will.
	q.tail.CompareAndSwap(t, n)
	q.size.Inc()
}

// Pop removes and returns the oldest element. It returns false without
// blocking when no element is available.
func (q *LinkedQueue[T]) Pop() (T, bool) {
	var zero T
	bo := q.newBackoff()

	for {
		h := q.head.Load()
		t := q.tail.Load()
		if h == nil || t == nil {
			q.corrupted("head or tail cursor is nil")
		}
		next := h.next.Load()
		if h != q.head.Load() {
			// another consumer advanced head between the reads
			bo.wait()
			continue
		}
		if h == t {
			if next == nil {
				return zero, false
			}
			// not empty, tail merely lags; help it forward and retry
			q.tail.CompareAndSwap(t, next)
			continue
		}
		if next == nil {
			// h != t guarantees a successor; a nil one means the chain
			// was mutated outside the protocol
			q.corrupted("missing successor between head and tail")
		}
		// Read the value before swinging head. After a successful swing
		// another consumer may treat the old node as reclaimed storage.
		elem := next.value
		if q.head.CompareAndSwap(h, next) {
			q.size.Dec()
			return elem, true
		}
		bo.wait()
	}
}

// Peek returns the oldest element without consuming it. Like Empty, the
// answer is a snapshot that concurrent consumers can invalidate at once.
func (q *LinkedQueue[T]) Peek() (T, bool) {
	var zero T
	h := q.head.Load()
	if h == nil {
		q.corrupted("head cursor is nil")
	}
	next := h.next.Load()
	if next == nil {
		return zero, false
	}
	return next.value, true
}

// Size returns the approximate number of elements. The counter trails
// in-flight operations, so it is advisory under concurrency and exact in
// quiescence.
func (q *LinkedQueue[T]) Size() int {
	if n := q.size.Load(); n > 0 {
		return int(n)
	}
	return 0
}

// Empty reports whether head and tail designate the same node. A true
// result can coexist with a concurrently linked element whose tail swing
// has not landed yet; the probe is advisory only.
func (q *LinkedQueue[T]) Empty() bool {
	h := q.head.Load()
	t := q.tail.Load()
	if h == nil || t == nil {
		q.corrupted("head or tail cursor is nil")
	}
	return h == t
}

func (q *LinkedQueue[T]) newBackoff() backoff {
	return backoff{opts: &q.backoffOpts, clk: q.clk}
}

// corrupted aborts the current operation. A nil cursor or a broken chain
// can only be produced by memory corruption or by a LinkedQueue that was
// not built with NewLinkedQueue; there is no valid state to retry from, so
// continuing would lose or duplicate elements silently.
func (q *LinkedQueue[T]) corrupted(detail string) {
	log.Panic("linked queue invariant violated",
		zap.String("detail", detail),
		zap.Error(derror.ErrQueueCorrupted.GenWithStackByArgs(detail)))
}
