package metrics

import (
	"context"

	appconfig "github.com/Sokol111/mqtt-event-ingestor/pkg/core/config"
	otelconfig "github.com/Sokol111/mqtt-event-ingestor/pkg/observability/config"
	otelinternal "github.com/Sokol111/mqtt-event-ingestor/pkg/observability/internal"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// newMeterProvider builds the SDK MeterProvider for the ingest counters and
// runtime stats. Without a collector endpoint instruments are recorded by a
// manual reader and never exported, mirroring the local tracing mode.
func newMeterProvider(ctx context.Context, log *zap.Logger, cfg otelconfig.Config, appCfg appconfig.AppConfig) (*sdkmetric.MeterProvider, error) {
	res, err := otelinternal.NewResource(ctx, appCfg)
	if err != nil {
		return nil, err
	}

	if cfg.OtelCollectorEndpoint == "" {
		log.Info("metrics: no collector endpoint, running in local mode")
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewManualReader()),
			sdkmetric.WithResource(res),
		), nil
	}

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtelCollectorEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	log.Info("metrics: exporting to collector",
		zap.String("endpoint", cfg.OtelCollectorEndpoint),
		zap.Duration("interval", cfg.Metrics.Interval),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.Metrics.Interval))),
		sdkmetric.WithResource(res),
	), nil
}
