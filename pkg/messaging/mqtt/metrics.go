package mqtt

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeProcessed = "processed"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
	outcomePanicked  = "panicked"
)

type messageMetrics struct {
	received  metric.Int64Counter
	processed metric.Int64Counter
	sessions  metric.Int64Counter
}

func newMessageMetrics(mp metric.MeterProvider) (*messageMetrics, error) {
	meter := mp.Meter("mqtt-consumer")

	received, err := meter.Int64Counter("mqtt.messages.received",
		metric.WithDescription("Messages delivered by the broker"))
	if err != nil {
		return nil, fmt.Errorf("failed to create received counter: %w", err)
	}
	processed, err := meter.Int64Counter("mqtt.messages.processed",
		metric.WithDescription("Messages handled, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create processed counter: %w", err)
	}
	sessions, err := meter.Int64Counter("mqtt.sessions",
		metric.WithDescription("Established broker sessions"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions counter: %w", err)
	}

	return &messageMetrics{received: received, processed: processed, sessions: sessions}, nil
}

func (m *messageMetrics) messageReceived(ctx context.Context, topic string) {
	m.received.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *messageMetrics) messageHandled(ctx context.Context, topic, outcome string) {
	m.processed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
}

func (m *messageMetrics) sessionEstablished(ctx context.Context) {
	m.sessions.Add(ctx, 1)
}
