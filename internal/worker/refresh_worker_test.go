package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRefreshWorker_ReloadsUntilCancelled(t *testing.T) {
	var calls int32
	loader := LoaderFunc(func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	w := NewRefreshWorker(loader, 10*time.Millisecond, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRefreshWorker_FailureKeepsRunning(t *testing.T) {
	var calls int32
	loader := LoaderFunc(func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("upstream down")
	})
	w := NewRefreshWorker(loader, 10*time.Millisecond, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRefreshWorker_DisabledReturnsImmediately(t *testing.T) {
	w := NewRefreshWorker(LoaderFunc(func(context.Context) error {
		t.Error("loader must not be called")
		return nil
	}), 0, time.Second, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled worker kept running")
	}
}
