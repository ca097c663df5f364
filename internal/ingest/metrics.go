package ingest

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type ingestMetrics struct {
	received metric.Int64Counter
	stored   metric.Int64Counter
	skipped  metric.Int64Counter
	failed   metric.Int64Counter
}

func newIngestMetrics(mp metric.MeterProvider) (*ingestMetrics, error) {
	meter := mp.Meter("event-ingest")
	m := &ingestMetrics{}

	var err error
	if m.received, err = meter.Int64Counter("ingest.messages.received"); err != nil {
		return nil, fmt.Errorf("failed to create received counter: %w", err)
	}
	if m.stored, err = meter.Int64Counter("ingest.messages.stored"); err != nil {
		return nil, fmt.Errorf("failed to create stored counter: %w", err)
	}
	if m.skipped, err = meter.Int64Counter("ingest.messages.skipped"); err != nil {
		return nil, fmt.Errorf("failed to create skipped counter: %w", err)
	}
	if m.failed, err = meter.Int64Counter("ingest.messages.failed"); err != nil {
		return nil, fmt.Errorf("failed to create failed counter: %w", err)
	}
	return m, nil
}

func (m *ingestMetrics) add(ctx context.Context, c metric.Int64Counter, topic string) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}
