package ingest

import (
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
	clock  Clock
}

// Option configures the ingest module.
type Option func(*moduleOptions)

// WithConfig provides a static Config instead of reading viper.
func WithConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *moduleOptions) {
		o.clock = c
	}
}

// NewIngestModule provides the decoder, clock and persistence gateway used
// by NewHandler. The handler itself is bound by the MQTT module.
func NewIngestModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("ingest",
		fx.Provide(
			func(v *viper.Viper) (Config, error) {
				if o.config != nil {
					return *o.config, o.config.Validate()
				}
				return newConfig(v)
			},
			func(conf Config, log *zap.Logger) (Clock, error) {
				if o.clock != nil {
					return o.clock, nil
				}
				loc, err := conf.Location()
				if err != nil {
					return nil, err
				}
				log.Info("event timestamps use reference timezone", zap.String("timezone", loc.String()))
				return NewZoneClock(loc), nil
			},
			NewDecoder,
			NewGateway,
		),
	)
}
