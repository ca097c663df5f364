package config

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Environment variable names
const (
	envAppEnv            = "APP_ENV"
	envAppServiceName    = "APP_SERVICE_NAME"
	envAppServiceVersion = "APP_SERVICE_VERSION"
	envConfigFile        = "CONFIG_FILE"
)

const (
	DefaultServiceName    = "mqtt-event-ingestor"
	DefaultServiceVersion = "dev"
	DefaultEnvironment    = "local"
)

// AppConfig describes the running service. It feeds the telemetry resource
// and the startup log line.
type AppConfig struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (e.g., "local", "staging", "pro")
	Environment string
}

// appConfigOptions holds options for the app config module.
type appConfigOptions struct {
	config *AppConfig
}

// AppConfigOption is a functional option for the app config module.
type AppConfigOption func(*appConfigOptions)

// WithAppConfig supplies a static AppConfig instead of reading the environment.
func WithAppConfig(cfg AppConfig) AppConfigOption {
	return func(opts *appConfigOptions) {
		opts.config = &cfg
	}
}

// NewAppConfigModule provides AppConfig. Values come from APP_SERVICE_NAME,
// APP_SERVICE_VERSION and APP_ENV; unset variables fall back to defaults.
func NewAppConfigModule(opts ...AppConfigOption) fx.Option {
	o := &appConfigOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return fx.Module("appconfig",
		fx.Provide(func() AppConfig {
			if o.config != nil {
				return *o.config
			}
			return newAppConfig()
		}),
		fx.Invoke(func(logger *zap.Logger, conf AppConfig) {
			logger.Info("loaded application configuration",
				zap.String("service", conf.ServiceName),
				zap.String("version", conf.ServiceVersion),
				zap.String("environment", conf.Environment),
				zap.Bool("configFileProvided", os.Getenv(envConfigFile) != ""),
			)
		}),
	)
}

func newAppConfig() AppConfig {
	return AppConfig{
		ServiceName:    envOrDefault(envAppServiceName, DefaultServiceName),
		ServiceVersion: envOrDefault(envAppServiceVersion, DefaultServiceVersion),
		Environment:    envOrDefault(envAppEnv, DefaultEnvironment),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
