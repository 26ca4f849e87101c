package writer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	for _, p := range []string{"1", "2", "3"} {
		q.Push(Request{Topic: "t", Payload: p})
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"1", "2", "3"} {
		r, ok := q.Pop(context.Background(), 0)
		require.True(t, ok)
		assert.Equal(t, want, r.Payload)
	}
	_, ok := q.Pop(context.Background(), 0)
	assert.False(t, ok)
}

func TestQueue_PopWaitsForPush(t *testing.T) {
	q := NewQueue()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(Request{Payload: "late"})
	}()

	r, ok := q.Pop(context.Background(), 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, "late", r.Payload)
}

func TestQueue_PopTimesOut(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	_, ok := q.Pop(context.Background(), 30*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestQueue_PopCancelled(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := q.Pop(ctx, time.Minute)
	assert.False(t, ok)
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(Request{})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}

func TestQueue_PushFront(t *testing.T) {
	q := NewQueue()
	q.Push(Request{Payload: "2"})
	q.PushFront(Request{Payload: "1"})

	r, ok := q.Pop(context.Background(), 0)
	require.True(t, ok)
	assert.Equal(t, "1", r.Payload)
}
