package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	name     string
	startErr error
	stopErr  error
	started  bool
	stopped  bool
	order    *[]string
	errCh    chan error
}

func newFake(name string, order *[]string) *fakeServer {
	return &fakeServer{name: name, order: order, errCh: make(chan error, 1)}
}

func (f *fakeServer) Name() string      { return f.name }
func (f *fakeServer) Err() <-chan error { return f.errCh }
func (f *fakeServer) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	f.stopped = true
	*f.order = append(*f.order, f.name)
	return f.stopErr
}

func TestManager_StartStopReverseOrder(t *testing.T) {
	var order []string
	a, b := newFake("a", &order), newFake("b", &order)
	m := NewManager(time.Second, a, b)

	require.NoError(t, m.Start(context.Background()))
	assert.Error(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestManager_StartFailureStopsStarted(t *testing.T) {
	var order []string
	a, b := newFake("a", &order), newFake("b", &order)
	b.startErr = errors.New("bind failed")
	m := NewManager(time.Second, a, b)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind failed")
	assert.True(t, a.stopped)
	assert.False(t, b.stopped)
}

func TestManager_RunStopsOnContext(t *testing.T) {
	var order []string
	a := newFake("a", &order)
	m := NewManager(time.Second, a)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.True(t, a.stopped)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestManager_RunStopsOnServerError(t *testing.T) {
	var order []string
	a := newFake("a", &order)
	m := NewManager(time.Second, a)

	go func() {
		time.Sleep(20 * time.Millisecond)
		a.errCh <- errors.New("listener closed")
	}()

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener closed")
	assert.True(t, a.stopped)
}
