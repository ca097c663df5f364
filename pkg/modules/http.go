package modules

import (
	probes "github.com/Sokol111/mqtt-event-ingestor/pkg/http"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/http/server"
	"go.uber.org/fx"
)

// NewHTTPModule provides the liveness and readiness probe server.
func NewHTTPModule(opts ...server.Option) fx.Option {
	return probes.NewHTTPModule(opts...)
}
