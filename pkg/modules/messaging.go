package modules

import (
	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/worker"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/messaging/mqtt"
	"go.uber.org/fx"
)

// NewMessagingModule provides the MQTT consumer around the handler built by
// handlerConstructor and starts every registered worker.
func NewMessagingModule(handlerConstructor any, opts ...mqtt.Option) fx.Option {
	return fx.Options(
		mqtt.NewMQTTModule(handlerConstructor, opts...),
		worker.Invoke(),
	)
}
