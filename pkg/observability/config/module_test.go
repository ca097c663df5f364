package config

import (
	"testing"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := config.NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultSampleRatio, cfg.Tracing.SampleRatio)
	assert.Equal(t, DefaultMetricsInterval, cfg.Metrics.Interval)
	assert.Empty(t, cfg.OtelCollectorEndpoint)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("OBSERVABILITY_OTEL_COLLECTOR_ENDPOINT", "collector:4317")
	t.Setenv("OBSERVABILITY_TRACING_ENABLED", "true")
	t.Setenv("OBSERVABILITY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("OBSERVABILITY_METRICS_INTERVAL", "30s")
	v, err := config.NewViper("")
	require.NoError(t, err)

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, "collector:4317", cfg.OtelCollectorEndpoint)
	assert.True(t, cfg.Tracing.Enabled)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Metrics.Interval)
}

func TestProvideConfig_DisableOptionsWin(t *testing.T) {
	static := Config{
		Tracing: TracingConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}
	opts := &configOptions{config: &static, disableTracing: true, disableMetrics: true}

	cfg, err := provideConfig(opts, nil, zap.NewNop())

	require.NoError(t, err)
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsInterval, cfg.Metrics.Interval)
	assert.Equal(t, DefaultSampleRatio, cfg.Tracing.SampleRatio)
}
