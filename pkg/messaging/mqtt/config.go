package mqtt

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/config"
	"github.com/spf13/viper"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`

	KeepAlive         time.Duration `mapstructure:"keep-alive"`
	ClientIDPrefix    string        `mapstructure:"client-id-prefix"`
	PersistentSession bool          `mapstructure:"persistent-session"`

	// Initial connect: bounded attempts with a constant delay between them.
	ConnectMaxRetries int           `mapstructure:"connect-max-retries"`
	ConnectRetryDelay time.Duration `mapstructure:"connect-retry-delay"`
	ConnectTimeout    time.Duration `mapstructure:"connect-timeout"`

	// Reconnect after a lost session: unbounded attempts, exponential delay.
	ReconnectMinDelay time.Duration `mapstructure:"reconnect-min-delay"`
	ReconnectMaxDelay time.Duration `mapstructure:"reconnect-max-delay"`

	EventBufferSize   int           `mapstructure:"event-buffer-size"`
	DisconnectQuiesce time.Duration `mapstructure:"disconnect-quiesce"`
}

var defaults = map[string]any{
	"host":                "localhost",
	"port":                1883,
	"username":            "admin",
	"password":            "admin",
	"topic":               "test",
	"qos":                 0,
	"keep-alive":          "120s",
	"client-id-prefix":    "subscriber",
	"persistent-session":  false,
	"connect-max-retries": 5,
	"connect-retry-delay": "5s",
	"connect-timeout":     "10s",
	"reconnect-min-delay": "1s",
	"reconnect-max-delay": "120s",
	"event-buffer-size":   256,
	"disconnect-quiesce":  "250ms",
}

func newConfig(v *viper.Viper) (Config, error) {
	config.Defaults(v, "mqtt", defaults)
	if err := config.BindEnvAliases(v, "mqtt.username", "MQTT_USER"); err != nil {
		return Config{}, err
	}
	if err := config.BindEnvAliases(v, "mqtt.password", "MQTT_PASS"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := config.UnmarshalSection(v, "mqtt", &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads the mqtt section from v.
func LoadConfig(v *viper.Viper) (Config, error) {
	return newConfig(v)
}

func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("mqtt host must not be empty")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("mqtt port %d out of range", c.Port)
	case c.Topic == "":
		return fmt.Errorf("mqtt topic must not be empty")
	case c.QoS < 0 || c.QoS > 2:
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS)
	case c.ConnectMaxRetries < 1:
		return fmt.Errorf("mqtt connect-max-retries must be at least 1")
	case c.ConnectRetryDelay < 0:
		return fmt.Errorf("mqtt connect-retry-delay must not be negative")
	case c.ReconnectMinDelay <= 0 || c.ReconnectMaxDelay < c.ReconnectMinDelay:
		return fmt.Errorf("mqtt reconnect delays must satisfy 0 < min <= max")
	case c.EventBufferSize < 1:
		return fmt.Errorf("mqtt event-buffer-size must be positive")
	}
	return nil
}

// BrokerURL is the paho server address, e.g. tcp://localhost:1883.
func (c Config) BrokerURL() string {
	return "tcp://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
