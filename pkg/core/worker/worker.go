package worker

import (
	"context"
	"sync"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// GroupTag collects every registered worker in the fx graph.
const GroupTag = `group:"workers"`

// Worker is a background loop bound to the application lifecycle.
type Worker interface {
	Start()
	Stop(ctx context.Context)
}

// runnable is a type that has a Run method that can return a fatal error.
type runnable interface {
	Run(ctx context.Context) error
}

// Options contains configuration for a worker.
type Options struct {
	WaitReady       bool
	ShutdownOnError bool
}

// Option is a functional option for configuring a worker.
type Option func(*Options)

// WithReady makes the worker wait for all components to be ready before starting.
func WithReady() Option {
	return func(o *Options) {
		o.WaitReady = true
	}
}

// WithShutdown makes the worker trigger application shutdown on fatal error.
func WithShutdown() Option {
	return func(o *Options) {
		o.ShutdownOnError = true
	}
}

type baseWorker struct {
	name       string
	ctx        context.Context
	cancelFunc context.CancelFunc
	done       chan struct{}
	once       sync.Once
	log        *zap.Logger
	runFunc    func(ctx context.Context) error
	shutdowner fx.Shutdowner
	readiness  health.ReadinessWaiter
	options    Options
}

// Start runs the worker function in its own goroutine.
func (w *baseWorker) Start() {
	w.log.Info("starting " + w.name)
	w.ctx, w.cancelFunc = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		w.run()
	}()
}

func (w *baseWorker) run() {
	if w.options.WaitReady && w.readiness != nil {
		w.log.Info("waiting for components readiness")
		if err := w.readiness.WaitReady(w.ctx); err != nil {
			w.log.Info(w.name + " stopped (cancelled while waiting for readiness)")
			return
		}
		w.log.Info("components readiness achieved")
	}

	err := w.runFunc(w.ctx)
	if err == nil {
		w.log.Info(w.name + " stopped")
		return
	}

	if w.options.ShutdownOnError && w.shutdowner != nil {
		w.log.Error(w.name+" fatal error, initiating shutdown", zap.Error(err))
		if shutdownErr := w.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
			w.log.Error("failed to initiate shutdown", zap.Error(shutdownErr))
		}
		return
	}
	w.log.Error(w.name+" stopped with error", zap.Error(err))
}

// Stop cancels the worker context and waits for it to return or for ctx to expire.
func (w *baseWorker) Stop(ctx context.Context) {
	w.once.Do(func() {
		w.log.Info("stopping " + w.name)
		if w.cancelFunc != nil {
			w.cancelFunc()
		}
	})
	if w.done == nil {
		return
	}
	select {
	case <-w.done:
	case <-ctx.Done():
		w.log.Warn(w.name+" did not stop before timeout", zap.Error(ctx.Err()))
	}
}

func registerWorker(lc fx.Lifecycle, w Worker) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			w.Stop(ctx)
			return nil
		},
	})
}

// Register returns a constructor that binds dep's Run method to the fx
// lifecycle and adds the resulting Worker to the "workers" group.
//
// Example:
//
//	worker.Register[*mqtt.Manager]("mqtt manager", worker.WithReady(), worker.WithShutdown())
func Register[T runnable](name string, opts ...Option) any {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return fx.Annotate(
		func(lc fx.Lifecycle, log *zap.Logger, shutdowner fx.Shutdowner, readiness health.ReadinessWaiter, dep T) Worker {
			w := &baseWorker{
				name:       name,
				log:        log,
				runFunc:    dep.Run,
				shutdowner: shutdowner,
				readiness:  readiness,
				options:    options,
			}
			registerWorker(lc, w)
			return w
		},
		fx.ResultTags(GroupTag),
	)
}

// Invoke forces construction of every registered worker.
func Invoke() fx.Option {
	return fx.Invoke(fx.Annotate(func([]Worker) {}, fx.ParamTags(GroupTag)))
}
