// Package http serves liveness and readiness probes.
package http

import (
	"github.com/Sokol111/mqtt-event-ingestor/pkg/http/health"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/http/server"
	"go.uber.org/fx"
)

// NewHTTPModule provides the probe server and health routes.
func NewHTTPModule(opts ...server.Option) fx.Option {
	return fx.Options(
		server.NewHTTPServerModule(opts...),
		health.NewHealthRoutesModule(),
	)
}
