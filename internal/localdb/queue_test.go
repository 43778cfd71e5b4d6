package localdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()
	for _, op := range []string{"a", "b", "c"} {
		require.True(t, q.Enqueue(task{op: op}))
	}
	assert.Equal(t, 3, q.Len())

	var got []string
	for {
		tk, ok := q.TryDequeue()
		if !ok {
			break
		}
		got = append(got, tk.op)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestTaskQueue_SignalCoalesces(t *testing.T) {
	q := newTaskQueue()
	q.Enqueue(task{op: "a"})
	q.Enqueue(task{op: "b"})

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce into one")
	default:
	}
}

func TestTaskQueue_Close(t *testing.T) {
	q := newTaskQueue()
	require.True(t, q.Enqueue(task{op: "a"}))
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(task{op: "b"}), "enqueue after close")
	assert.False(t, q.Drained(), "queued tasks survive close")

	_, ok := q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Drained())

	// Closed signal channel never blocks.
	<-q.Wait()
}

func TestFuture_ResolvesOnce(t *testing.T) {
	f := newFuture[int]()
	f.resolve(1, nil)
	f.resolve(2, assert.AnError)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done() not closed after resolve")
	}
}

func TestFuture_AwaitContextDone(t *testing.T) {
	f := newFuture[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	f.resolve("late", nil)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}
