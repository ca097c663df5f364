package server

import (
	"fmt"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/config"
	"github.com/spf13/viper"
)

// Config controls the probe listener. Port 0 picks a free port.
type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read-header-timeout"`
	WriteTimeout      time.Duration `mapstructure:"write-timeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	config.Defaults(v, "http", map[string]any{
		"enabled":             true,
		"port":                8081,
		"read-header-timeout": "5s",
		"write-timeout":       "10s",
	})

	var cfg Config
	if err := config.UnmarshalSection(v, "http", &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.Port)
	}
	return nil
}
