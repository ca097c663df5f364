package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	// Arrange
	t.Setenv(envAppEnv, "")
	t.Setenv(envAppServiceName, "")
	t.Setenv(envAppServiceVersion, "")

	// Act
	cfg := newAppConfig()

	// Assert
	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.Equal(t, DefaultServiceVersion, cfg.ServiceVersion)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
}

func TestNewAppConfig_FromEnvironment(t *testing.T) {
	// Arrange
	t.Setenv(envAppEnv, "staging")
	t.Setenv(envAppServiceName, "ingestor-eu")
	t.Setenv(envAppServiceVersion, "1.4.0")

	// Act
	cfg := newAppConfig()

	// Assert
	assert.Equal(t, "ingestor-eu", cfg.ServiceName)
	assert.Equal(t, "1.4.0", cfg.ServiceVersion)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestNewAppConfig_PartialEnvironment(t *testing.T) {
	tests := []struct {
		name            string
		env             map[string]string
		expectedService string
		expectedEnv     string
	}{
		{
			name:            "only environment set",
			env:             map[string]string{envAppEnv: "pro"},
			expectedService: DefaultServiceName,
			expectedEnv:     "pro",
		},
		{
			name:            "only service name set",
			env:             map[string]string{envAppServiceName: "custom"},
			expectedService: "custom",
			expectedEnv:     DefaultEnvironment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(envAppEnv, "")
			t.Setenv(envAppServiceName, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			// Act
			cfg := newAppConfig()

			// Assert
			assert.Equal(t, tt.expectedService, cfg.ServiceName)
			assert.Equal(t, tt.expectedEnv, cfg.Environment)
		})
	}
}
