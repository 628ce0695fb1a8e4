package containers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSliceQueueBasics(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue[int]()
	require.True(t, q.Empty())
	require.Equal(t, 0, q.Size())

	_, ok := q.Pop()
	require.False(t, ok)
	_, ok = q.Peek()
	require.False(t, ok)

	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	require.Equal(t, 100, q.Size())
	require.False(t, q.Empty())

	v, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 0, v)

	for i := 0; i < 100; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.True(t, q.Empty())
}

func TestSliceQueueSignal(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue[string]()

	select {
	case <-q.C:
		t.Fatal("signal on empty queue")
	default:
	}

	q.Push("a")
	q.Push("b")

	// signals coalesce: two pushes arm the channel once
	<-q.C
	select {
	case <-q.C:
		t.Fatal("signal not coalesced")
	default:
	}

	// a partial drain re-arms the channel
	v, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, "a", v)
	<-q.C

	v, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "b", v)
	select {
	case <-q.C:
		t.Fatal("signal after full drain")
	default:
	}
}

func TestSliceQueueSignalDrivenConsumer(t *testing.T) {
	t.Parallel()

	q := NewSliceQueue[int]()
	const total = 10000

	var eg errgroup.Group
	eg.Go(func() error {
		for i := 0; i < total; i++ {
			q.Push(i)
		}
		return nil
	})

	// the consumer blocks on C and drains in bursts, the way the notifier
	// dispatcher does
	got := make([]int, 0, total)
	for len(got) < total {
		<-q.C
		for {
			v, ok := q.Pop()
			if !ok {
				break
			}
			got = append(got, v)
		}
	}
	require.NoError(t, eg.Wait())

	for i, v := range got {
		require.Equal(t, i, v)
	}
}
