package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Modes(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		level       zapcore.Level
	}{
		{name: "development", development: true, level: zapcore.DebugLevel},
		{name: "production", development: false, level: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { defaultLogger = zap.NewNop() })

			// Given: configuration
			cfg := Config{Level: tt.level, Development: tt.development, StacktraceLevel: zapcore.ErrorLevel}

			// When: creating logger
			logger, atomicLevel, err := newLogger(cfg)

			// Then: logger is created with the configured level and becomes the default
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Equal(t, tt.level, atomicLevel.Level())
			assert.Same(t, logger, defaultLogger)
			_ = logger.Sync()
		})
	}
}

func TestNewLogger_AtomicLevelIsMutable(t *testing.T) {
	t.Cleanup(func() { defaultLogger = zap.NewNop() })

	// Given: warn level logger
	logger, atomicLevel, err := newLogger(Config{Level: zapcore.WarnLevel})
	require.NoError(t, err)

	// When: changing level at runtime
	atomicLevel.SetLevel(zapcore.DebugLevel)

	// Then: level is updated
	assert.Equal(t, zapcore.DebugLevel, atomicLevel.Level())
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	_ = logger.Sync()
}

func TestNewLogger_FileOutput(t *testing.T) {
	t.Cleanup(func() { defaultLogger = zap.NewNop() })

	// Given: file output path
	out := filepath.Join(t.TempDir(), "ingestor.log")

	// When: creating logger
	logger, _, err := newLogger(Config{Level: zapcore.InfoLevel, OutputPaths: []string{out}})

	// Then: logger is created
	require.NoError(t, err)
	logger.Info("event stored")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, out)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	// Given: invalid output path
	cfg := Config{Level: zapcore.InfoLevel, OutputPaths: []string{"  "}}

	// When: creating logger
	_, _, err := newLogger(cfg)

	// Then: validation fails
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
