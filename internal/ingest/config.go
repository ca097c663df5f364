package ingest

import (
	"fmt"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/config"
	"github.com/spf13/viper"
)

const DefaultTimezone = "America/Costa_Rica"

type Config struct {
	// Timezone is the IANA zone every event timestamp is expressed in.
	Timezone string `mapstructure:"timezone"`

	// PayloadLogLimit caps the number of characters of a payload written to the log.
	PayloadLogLimit int `mapstructure:"payload-log-limit"`
}

func newConfig(v *viper.Viper) (Config, error) {
	config.Defaults(v, "ingest", map[string]any{
		"timezone":          DefaultTimezone,
		"payload-log-limit": 100,
	})

	var cfg Config
	if err := config.UnmarshalSection(v, "ingest", &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.PayloadLogLimit < 0 {
		return fmt.Errorf("ingest payload-log-limit must not be negative")
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, fmt.Errorf("ingest timezone must not be empty")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
