package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) FilePath {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return FilePath(path)
}

func TestNewViper_Success(t *testing.T) {
	// Arrange
	configFile := writeConfig(t, "config.yaml", `
mqtt:
  host: broker.local
  port: 8883
database:
  url: sqlite:///data/events.db
`)

	// Act
	v, err := NewViper(configFile)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "broker.local", v.GetString("mqtt.host"))
	assert.Equal(t, 8883, v.GetInt("mqtt.port"))
	assert.Equal(t, "sqlite:///data/events.db", v.GetString("database.url"))
}

func TestNewViper_WithoutFile(t *testing.T) {
	// Act
	v, err := NewViper("")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, v.ConfigFileUsed())
}

func TestNewViper_FileNotFound(t *testing.T) {
	// Act
	v, err := NewViper("/nonexistent/path/config.yaml")

	// Assert
	require.Error(t, err)
	assert.Nil(t, v)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewViper_InvalidYAML(t *testing.T) {
	// Arrange
	configFile := writeConfig(t, "config.yaml", `
mqtt:
  host: localhost
invalid yaml syntax here: [[[
`)

	// Act
	v, err := NewViper(configFile)

	// Assert
	require.Error(t, err)
	assert.Nil(t, v)
}

func TestNewViper_EnvKeyReplacer(t *testing.T) {
	// Arrange
	configFile := writeConfig(t, "config.yaml", `
mqtt:
  keep-alive: 60s
`)
	t.Setenv("MQTT_KEEP_ALIVE", "90s")

	// Act
	v, err := NewViper(configFile)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, v.GetDuration("mqtt.keep-alive"))
}

func TestResolveConfigPath(t *testing.T) {
	t.Run("explicit path wins over environment", func(t *testing.T) {
		t.Setenv(envConfigFile, "/from/env.yaml")
		assert.Equal(t, FilePath("/explicit.yaml"), ResolveConfigPath(WithConfigPath("/explicit.yaml")))
	})

	t.Run("environment used when no option", func(t *testing.T) {
		t.Setenv(envConfigFile, "/from/env.yaml")
		assert.Equal(t, FilePath("/from/env.yaml"), ResolveConfigPath())
	})

	t.Run("disabled config file", func(t *testing.T) {
		t.Setenv(envConfigFile, "/from/env.yaml")
		assert.Equal(t, FilePath(""), ResolveConfigPath(WithoutConfigFile()))
	})
}

func TestUnmarshalSection(t *testing.T) {
	type brokerConfig struct {
		Host      string        `mapstructure:"host"`
		Port      int           `mapstructure:"port"`
		Username  string        `mapstructure:"username"`
		KeepAlive time.Duration `mapstructure:"keep-alive"`
	}

	t.Run("file values with env override", func(t *testing.T) {
		// Arrange
		configFile := writeConfig(t, "config.yaml", `
mqtt:
  host: localhost
  port: 1883
  keep-alive: 120s
`)
		t.Setenv("MQTT_PORT", "2883")
		v, err := NewViper(configFile)
		require.NoError(t, err)

		// Act
		var cfg brokerConfig
		err = UnmarshalSection(v, "mqtt", &cfg)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 2883, cfg.Port)
		assert.Equal(t, 120*time.Second, cfg.KeepAlive)
	})

	t.Run("env only with registered defaults", func(t *testing.T) {
		// Arrange
		t.Setenv("MQTT_HOST", "broker.example")
		v, err := NewViper("")
		require.NoError(t, err)
		Defaults(v, "mqtt", map[string]any{
			"host":       "localhost",
			"port":       1883,
			"keep-alive": "2m",
		})

		// Act
		var cfg brokerConfig
		err = UnmarshalSection(v, "mqtt", &cfg)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "broker.example", cfg.Host)
		assert.Equal(t, 1883, cfg.Port)
		assert.Equal(t, 2*time.Minute, cfg.KeepAlive)
	})

	t.Run("legacy alias", func(t *testing.T) {
		// Arrange
		t.Setenv("MQTT_USER", "sensor")
		v, err := NewViper("")
		require.NoError(t, err)
		require.NoError(t, BindEnvAliases(v, "mqtt.username", "MQTT_USER"))

		// Act
		var cfg brokerConfig
		err = UnmarshalSection(v, "mqtt", &cfg)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "sensor", cfg.Username)
	})

	t.Run("missing section leaves zero value", func(t *testing.T) {
		v, err := NewViper("")
		require.NoError(t, err)

		var cfg brokerConfig
		require.NoError(t, UnmarshalSection(v, "mqtt", &cfg))
		assert.Equal(t, brokerConfig{}, cfg)
	})

	t.Run("invalid value", func(t *testing.T) {
		configFile := writeConfig(t, "config.yaml", `
mqtt:
  port: not-a-number
`)
		v, err := NewViper(configFile)
		require.NoError(t, err)

		var cfg brokerConfig
		err = UnmarshalSection(v, "mqtt", &cfg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load mqtt config")
	})
}
