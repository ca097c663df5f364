package modules

import (
	"github.com/Sokol111/mqtt-event-ingestor/pkg/core"
	"go.uber.org/fx"
)

// NewCoreModule provides config, logger and readiness tracking.
func NewCoreModule(opts ...core.Option) fx.Option {
	return core.NewCoreModule(opts...)
}
