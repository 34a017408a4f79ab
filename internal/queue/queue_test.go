package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/gitshare/pkg/log"
)

func newTestQueue(t *testing.T, maxConcurrent int) *RequestQueue {
	t.Helper()
	logger, _ := log.NewMockLogger()
	q, err := NewRequestQueue(logger, maxConcurrent)
	require.NoError(t, err)
	return q
}

func TestEnqueueDeliversResult(t *testing.T) {
	q := newTestQueue(t, 2)

	ch := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "done", nil
	})

	select {
	case result := <-ch:
		assert.Equal(t, "done", result)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestConcurrencyBound(t *testing.T) {
	q := newTestQueue(t, 2)

	release := make(chan struct{})
	started := make(chan struct{}, 5)

	var results []<-chan interface{}
	for i := 0; i < 5; i++ {
		ch := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
			started <- struct{}{}
			<-release
			return nil, nil
		})
		results = append(results, ch)
	}

	// Chỉ 2 task được chạy dù enqueue 5
	require.Eventually(t, func() bool {
		return q.ActiveCount() == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, q.WaitingCount())
	assert.Len(t, started, 2)

	close(release)
	for _, ch := range results {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for task result")
		}
	}

	assert.Equal(t, 0, q.ActiveCount())
	assert.Equal(t, 0, q.WaitingCount())
}

func TestDispatchOrderIsFifo(t *testing.T) {
	q := newTestQueue(t, 1)

	var mu sync.Mutex
	var order []int
	release := make(chan struct{})

	// Task đầu chiếm slot duy nhất để các task sau xếp hàng
	first := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
		<-release
		return 0, nil
	})

	var rest []<-chan interface{}
	for i := 1; i <= 4; i++ {
		i := i
		ch := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		})
		rest = append(rest, ch)
	}

	close(release)
	<-first
	for _, ch := range rest {
		<-ch
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestFailedTaskFallsBackToNil(t *testing.T) {
	q := newTestQueue(t, 1)

	ch := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})

	select {
	case result := <-ch:
		assert.Nil(t, result)
	case <-time.After(time.Second):
		t.Fatal("failed task must still deliver a result")
	}
}

func TestPanickedTaskFallsBackToNil(t *testing.T) {
	q := newTestQueue(t, 1)

	ch := q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
		panic("boom")
	})

	select {
	case result := <-ch:
		assert.Nil(t, result)
	case <-time.After(time.Second):
		t.Fatal("panicked task must still deliver a result")
	}

	// Queue vẫn dùng được sau panic
	ch = q.Enqueue(context.Background(), func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	assert.Equal(t, "ok", <-ch)
}

func TestZeroMaxConcurrentUsesDefault(t *testing.T) {
	q := newTestQueue(t, 0)
	assert.Equal(t, DefaultMaxConcurrent, q.maxConcurrent)
}
