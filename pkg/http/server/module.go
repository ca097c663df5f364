package server

import (
	"context"
	"net/http"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/health"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const componentName = "http-server"

type moduleOptions struct {
	config *Config
}

// Option configures the HTTP server module.
type Option func(*moduleOptions)

// WithServerConfig provides a static Config instead of reading viper.
func WithServerConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewHTTPServerModule provides the *http.ServeMux routes are registered on
// and serves it for the application lifetime when enabled.
func NewHTTPServerModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Options(
		fx.Provide(
			func(v *viper.Viper) (Config, error) {
				if o.config != nil {
					return *o.config, o.config.Validate()
				}
				return newConfig(v)
			},
			http.NewServeMux,
		),
		fx.Invoke(startHTTPServer),
	)
}

func startHTTPServer(lc fx.Lifecycle, log *zap.Logger, conf Config, mux *http.ServeMux, readiness health.ComponentManager, shutdowner fx.Shutdowner) {
	if !conf.Enabled {
		log.Info("HTTP server disabled")
		return
	}

	log = log.With(zap.String("component", componentName))
	markReady := readiness.AddComponent(componentName)
	var srv Server
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// created here so every route is registered by now
			srv = newServer(log, conf, mux)
			if _, err := srv.Listen(); err != nil {
				return err
			}
			markReady()

			go func() {
				if err := srv.Serve(); err != nil {
					log.Error("HTTP server failed, shutting down application", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1)) //nolint:errcheck // shutdown is best-effort
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv != nil {
				return srv.Shutdown(ctx)
			}
			return nil
		},
	})
}
