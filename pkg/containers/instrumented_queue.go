package containers

import (
	"github.com/gavv/monotime"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanfei1991/conqueue/pkg/promutil"
)

// Label values of the result dimension of the pop counter.
const (
	popResultOK    = "ok"
	popResultEmpty = "empty"
)

var _ Queue[int] = &InstrumentedQueue[int]{}

// InstrumentedQueue decorates a Queue with prometheus metrics exported
// through the process metric registry. Every operation updates a counter, so
// wrapping a queue trades some throughput for observability. The decorated
// queue keeps the inner queue's concurrency guarantees.
type InstrumentedQueue[T any] struct {
	inner Queue[T]
	name  string

	pushTotal   prometheus.Counter
	popTotal    *prometheus.CounterVec
	popDuration prometheus.Histogram
	depth       prometheus.Gauge
}

// NewInstrumentedQueue wraps q so that pushes, pops and queue depth are
// exported under the given queue name. The name must be unique within the
// process for the lifetime of the queue.
func NewInstrumentedQueue[T any](name string, q Queue[T]) *InstrumentedQueue[T] {
	factory := promutil.With(name)
	return &InstrumentedQueue[T]{
		inner: q,
		name:  name,
		pushTotal: factory.NewCounter(prometheus.CounterOpts{
			Subsystem: "queue",
			Name:      "pushes_total",
			Help:      "Total number of elements pushed into the queue.",
		}),
		popTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "queue",
			Name:      "pops_total",
			Help:      "Total number of pop attempts, partitioned by result.",
		}, []string{"result"}),
		popDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Subsystem: "queue",
			Name:      "pop_duration_seconds",
			Help:      "Latency of pop attempts, including retry backoff.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 8),
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Best-effort number of elements currently queued.",
		}),
	}
}

// Push appends elem to the inner queue and records it.
func (q *InstrumentedQueue[T]) Push(elem T) {
	q.inner.Push(elem)
	q.pushTotal.Inc()
	q.depth.Set(float64(q.inner.Size()))
}

// Pop dequeues from the inner queue and records the outcome.
func (q *InstrumentedQueue[T]) Pop() (T, bool) {
	start := monotime.Now()
	elem, ok := q.inner.Pop()
	q.popDuration.Observe(monotime.Since(start).Seconds())
	if ok {
		q.popTotal.WithLabelValues(popResultOK).Inc()
	} else {
		q.popTotal.WithLabelValues(popResultEmpty).Inc()
	}
	q.depth.Set(float64(q.inner.Size()))
	return elem, ok
}

// Peek delegates to the inner queue.
func (q *InstrumentedQueue[T]) Peek() (T, bool) {
	return q.inner.Peek()
}

// Size delegates to the inner queue.
func (q *InstrumentedQueue[T]) Size() int {
	return q.inner.Size()
}

// Empty delegates to the inner queue.
func (q *InstrumentedQueue[T]) Empty() bool {
	return q.inner.Empty()
}

// Unregister drops the queue's collectors from the process registry. Call it
// once the queue is no longer in use so the name can be reused.
func (q *InstrumentedQueue[T]) Unregister() {
	promutil.Unregister(q.name)
}
