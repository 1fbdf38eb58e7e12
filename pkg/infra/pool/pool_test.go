package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool("test", nil)
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "test", p.Name())
	assert.Equal(t, 100, p.Cap())
}

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 10, ExpiryDuration: 5 * time.Second})
	require.NoError(t, err)
	defer p.Release()

	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}); err != nil {
			wg.Done()
			t.Errorf("submit: %v", err)
		}
	}
	wg.Wait()

	assert.Equal(t, int32(100), counter.Load())
	assert.Eventually(t, func() bool {
		return p.Stats().CompletedTasks == 100
	}, time.Second, 10*time.Millisecond)
}

func TestPoolSubmitAfterRelease(t *testing.T) {
	p, err := NewPool("test", nil)
	require.NoError(t, err)
	p.Release()
	p.Release()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPoolRunAll(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 2, ExpiryDuration: time.Second})
	require.NoError(t, err)
	defer p.Release()

	var counter atomic.Int32
	tasks := make([]func(context.Context), 10)
	for i := range tasks {
		tasks[i] = func(context.Context) {
			time.Sleep(5 * time.Millisecond)
			counter.Add(1)
		}
	}
	p.RunAll(context.Background(), tasks...)
	assert.Equal(t, int32(10), counter.Load())
}

func TestPoolRunAll_ClosedPoolStillRuns(t *testing.T) {
	p, err := NewPool("test", nil)
	require.NoError(t, err)
	p.Release()

	var counter atomic.Int32
	p.RunAll(context.Background(), func(context.Context) { counter.Add(1) }, func(context.Context) { counter.Add(1) })
	assert.Equal(t, int32(2), counter.Load())
}

func TestPoolPanicHandler(t *testing.T) {
	var got atomic.Value
	done := make(chan struct{})
	p, err := NewPool("test", &Config{
		Capacity:       1,
		ExpiryDuration: time.Second,
		PanicHandler: func(v interface{}) {
			got.Store(v)
			close(done)
		},
	})
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Submit(func() { panic("boom") }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panic handler not called")
	}
	assert.Equal(t, "boom", got.Load())
	assert.Equal(t, int64(1), p.Stats().PanicRecovered)
}
