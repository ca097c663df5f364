package mqtt

import (
	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/worker"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// Option configures the MQTT module.
type Option func(*moduleOptions)

// WithConfig provides a static Config instead of reading viper.
func WithConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewMQTTModule wires a Manager around the Handler built by
// handlerConstructor and runs it as a worker. The worker waits for
// readiness and shuts the application down (exit code 1) when the
// initial connect is exhausted.
func NewMQTTModule(handlerConstructor any, opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("mqtt",
		fx.Decorate(
			func(log *zap.Logger, conf Config) *zap.Logger {
				return log.With(
					zap.String("component", "mqtt"),
					zap.String("broker", conf.BrokerURL()),
					zap.String("topic", conf.Topic),
				)
			},
		),
		fx.Provide(
			func(v *viper.Viper) (Config, error) {
				if o.config != nil {
					return *o.config, o.config.Validate()
				}
				return newConfig(v)
			},
			NewClient,
			fx.Annotate(
				handlerConstructor,
				fx.As(new(Handler)),
			),
			func(client Client, handler Handler, conf Config, log *zap.Logger, tp trace.TracerProvider, mp metric.MeterProvider) (*Manager, error) {
				return NewManager(client, handler, conf, log, tp, mp)
			},
			worker.Register[*Manager]("mqtt manager", worker.WithReady(), worker.WithShutdown()),
		),
	)
}
