package mqtt

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageTracer starts a consumer span per inbound message. MQTT 3.1.1 has
// no user properties, so there is no upstream context to extract.
type MessageTracer interface {
	StartConsumerSpan(ctx context.Context, msg Message) (context.Context, trace.Span)
}

type messageTracer struct {
	tracer trace.Tracer
}

func newMessageTracer(tp trace.TracerProvider) MessageTracer {
	return &messageTracer{
		tracer: tp.Tracer("mqtt-consumer"),
	}
}

func (t *messageTracer) StartConsumerSpan(ctx context.Context, msg Message) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "mqtt.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "mqtt"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.message.id", int(msg.ID)),
			attribute.Int("messaging.mqtt.qos", int(msg.QoS)),
			attribute.Bool("messaging.mqtt.duplicate", msg.Duplicate),
			attribute.Int("messaging.message.body.size", len(msg.Payload)),
		),
	)
}
