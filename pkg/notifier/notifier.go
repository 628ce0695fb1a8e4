package notifier

import (
	"context"
	"sync"

	"github.com/pingcap/errors"
	"go.uber.org/atomic"

	"github.com/hanfei1991/conqueue/pkg/containers"
)

type receiverID = int64

// Notifier is the sending endpoint of a multiple-producer-multiple-consumer
// notification mechanism. Events from concurrent senders are buffered in a
// thread-safe queue and fanned out to every live Receiver by a single
// dispatching goroutine.
type Notifier[T any] struct {
	receivers sync.Map // receiverID -> *Receiver[T]
	nextID    atomic.Int64

	queue containers.Queue[T]

	// bellCh wakes the dispatcher after a push. It has capacity one, so a
	// ring is never lost while the dispatcher is busy draining.
	bellCh chan struct{}

	closeCh       chan struct{}
	synchronizeCh chan struct{}
	closeOnce     sync.Once
}

// Receiver is the receiving endpoint of a multiple-producer-multiple-consumer
// notification mechanism.
type Receiver[T any] struct {
	id receiverID
	C  chan T

	closeOnce sync.Once
	closed    atomic.Bool

	notifier *Notifier[T]
}

func (r *Receiver[T]) close() {
	r.closed.Store(true)
	r.closeOnce.Do(
		func() {
			close(r.C)
		})
}

// Close closes the receiver
func (r *Receiver[T]) Close() {
	r.closed.Store(true)
	select {
	case <-r.notifier.synchronizeCh:
	case <-r.notifier.closeCh:
	}

	r.closeOnce.Do(
		func() {
			close(r.C)
		})
}

// NewNotifier creates a new Notifier backed by a lock-free queue.
func NewNotifier[T any]() *Notifier[T] {
	return NewNotifierWithQueue[T](containers.NewLinkedQueue[T]())
}

// NewNotifierWithQueue creates a new Notifier backed by the given queue.
// The queue must not be shared with other users.
func NewNotifierWithQueue[T any](queue containers.Queue[T]) *Notifier[T] {
	ret := &Notifier[T]{
		receivers:     sync.Map{},
		queue:         queue,
		bellCh:        make(chan struct{}, 1),
		closeCh:       make(chan struct{}),
		synchronizeCh: make(chan struct{}),
	}

	go ret.run()
	return ret
}

// NewReceiver creates a new Receiver associated with
// the given Notifier.
func (n *Notifier[T]) NewReceiver() *Receiver[T] {
	ch := make(chan T, 16)
	receiver := &Receiver[T]{
		id:       n.nextID.Add(1),
		C:        ch,
		notifier: n,
	}

	n.receivers.Store(receiver.id, receiver)
	return receiver
}

// Notify sends a new notification event. It is safe to call from multiple
// goroutines concurrently.
func (n *Notifier[T]) Notify(event T) {
	n.queue.Push(event)
	select {
	case n.bellCh <- struct{}{}:
	default:
	}
}

// Close closes the notifier.
func (n *Notifier[T]) Close() {
	n.closeOnce.Do(func() {
		close(n.closeCh)

		var receivers []*Receiver[T]
		n.receivers.Range(func(_, value any) bool {
			receiver := value.(*Receiver[T])
			receivers = append(receivers, receiver)
			return true
		})

		<-n.synchronizeCh

		for _, receiver := range receivers {
			receiver.close()
		}
	})
}

// Flush flushes all pending notifications.
func (n *Notifier[T]) Flush(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case <-n.synchronizeCh:
		}

		if n.queue.Size() == 0 {
			return nil
		}
	}
}

func (n *Notifier[T]) run() {
	defer func() {
		close(n.synchronizeCh)
	}()

	for {
		select {
		case <-n.closeCh:
			return
		case n.synchronizeCh <- struct{}{}:
			// no-op here. Just a synchronization barrier.
		case <-n.bellCh:
		Inner:
			for {
				event, ok := n.queue.Pop()
				if !ok {
					break Inner
				}

				n.receivers.Range(func(_, value any) bool {
					receiver := value.(*Receiver[T])

					if receiver.closed.Load() {
						return true
					}

					select {
					case <-n.closeCh:
						return false
					case receiver.C <- event:
						// send the event to the receiver.
					}
					return true
				})

				select {
				case <-n.closeCh:
					return
				default:
				}
			}
		}
	}
}
