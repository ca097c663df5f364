package sqldb

import (
	"context"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/health"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const componentName = "database"

type moduleOptions struct {
	config *Config
}

// Option configures the SQL module.
type Option func(*moduleOptions)

// WithConfig provides a static Config instead of reading viper.
func WithConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewSQLModule provides *DB and persistence.TxManager. The connection is
// validated and migrations are applied on start, after which the "database"
// readiness component is marked ready.
func NewSQLModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("sqldb",
		fx.Provide(
			func(v *viper.Viper) (Config, error) {
				if o.config != nil {
					return *o.config, o.config.Validate()
				}
				return newConfig(v)
			},
			provideDB,
			NewTxManager,
		),
		fx.Decorate(func(log *zap.Logger) *zap.Logger {
			return log.With(zap.String("component", componentName))
		}),
	)
}

type dbParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Log        *zap.Logger
	Conf       Config
	Readiness  health.ComponentManager
	Migrations *MigrationSource `optional:"true"`
}

func provideDB(p dbParams) (*DB, error) {
	db, err := Open(p.Conf, p.Log)
	if err != nil {
		return nil, err
	}

	markReady := p.Readiness.AddComponent(componentName)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Ping(ctx); err != nil {
				return err
			}
			if p.Conf.SkipMigrations || p.Migrations == nil {
				p.Log.Info("Database migrations disabled")
			} else if err := Migrate(ctx, db, *p.Migrations, p.Log); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return db, nil
}
