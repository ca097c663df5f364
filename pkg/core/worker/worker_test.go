package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// mockReadinessWaiter is a mock implementation of health.ReadinessWaiter
type mockReadinessWaiter struct {
	readyChan chan struct{}
}

func newMockReadinessWaiter() *mockReadinessWaiter {
	return &mockReadinessWaiter{readyChan: make(chan struct{})}
}

func (m *mockReadinessWaiter) WaitReady(ctx context.Context) error {
	select {
	case <-m.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockReadinessWaiter) MarkReady() {
	close(m.readyChan)
}

// mockShutdowner is a mock implementation of fx.Shutdowner
type mockShutdowner struct {
	shutdownCalled atomic.Bool
}

func (m *mockShutdowner) Shutdown(...fx.ShutdownOption) error {
	m.shutdownCalled.Store(true)
	return nil
}

func TestOptions(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		opts := Options{}
		assert.False(t, opts.WaitReady)
		assert.False(t, opts.ShutdownOnError)
	})

	t.Run("multiple options", func(t *testing.T) {
		opts := Options{}
		WithReady()(&opts)
		WithShutdown()(&opts)

		assert.True(t, opts.WaitReady)
		assert.True(t, opts.ShutdownOnError)
	})
}

func TestBaseWorker_StartStop(t *testing.T) {
	t.Run("runs function and cancels context on stop", func(t *testing.T) {
		ctxReceived := make(chan context.Context, 1)
		w := &baseWorker{
			name: "test-worker",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				ctxReceived <- ctx
				<-ctx.Done()
				return nil
			},
		}

		w.Start()

		var ctx context.Context
		select {
		case ctx = <-ctxReceived:
		case <-time.After(time.Second):
			t.Fatal("run function was not executed")
		}
		assert.NoError(t, ctx.Err())

		w.Stop(context.Background())

		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("stop returns when deadline expires", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		w := &baseWorker{
			name: "stuck-worker",
			log:  zap.NewNop(),
			runFunc: func(ctx context.Context) error {
				<-release
				return nil
			},
		}
		w.Start()

		stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		w.Stop(stopCtx)

		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestBaseWorker_WaitReady(t *testing.T) {
	t.Run("waits for readiness before running", func(t *testing.T) {
		readiness := newMockReadinessWaiter()
		var ran atomic.Bool
		w := &baseWorker{
			name:      "test-worker",
			log:       zap.NewNop(),
			readiness: readiness,
			options:   Options{WaitReady: true},
			runFunc: func(ctx context.Context) error {
				ran.Store(true)
				<-ctx.Done()
				return nil
			},
		}

		w.Start()
		time.Sleep(20 * time.Millisecond)
		assert.False(t, ran.Load())

		readiness.MarkReady()
		require.Eventually(t, ran.Load, time.Second, 5*time.Millisecond)

		w.Stop(context.Background())
	})

	t.Run("stop while waiting skips run", func(t *testing.T) {
		var ran atomic.Bool
		w := &baseWorker{
			name:      "test-worker",
			log:       zap.NewNop(),
			readiness: newMockReadinessWaiter(),
			options:   Options{WaitReady: true},
			runFunc: func(ctx context.Context) error {
				ran.Store(true)
				return nil
			},
		}

		w.Start()
		w.Stop(context.Background())

		assert.False(t, ran.Load())
	})
}

func TestBaseWorker_ErrorHandling(t *testing.T) {
	t.Run("shutdown on error when enabled", func(t *testing.T) {
		shutdowner := &mockShutdowner{}
		w := &baseWorker{
			name:       "test-worker",
			log:        zap.NewNop(),
			shutdowner: shutdowner,
			options:    Options{ShutdownOnError: true},
			runFunc: func(ctx context.Context) error {
				return errors.New("broker unreachable")
			},
		}

		w.Start()
		w.Stop(context.Background())

		assert.True(t, shutdowner.shutdownCalled.Load())
	})

	t.Run("no shutdown when disabled", func(t *testing.T) {
		shutdowner := &mockShutdowner{}
		w := &baseWorker{
			name:       "test-worker",
			log:        zap.NewNop(),
			shutdowner: shutdowner,
			runFunc: func(ctx context.Context) error {
				return errors.New("broker unreachable")
			},
		}

		w.Start()
		w.Stop(context.Background())

		assert.False(t, shutdowner.shutdownCalled.Load())
	})
}
