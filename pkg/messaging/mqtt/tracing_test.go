package mqtt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestMessageTracer_StartConsumerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := newMessageTracer(tp)

	_, span := tracer.StartConsumerSpan(context.Background(), Message{
		Topic:     "test",
		Payload:   []byte("hello"),
		ID:        7,
		QoS:       1,
		Duplicate: true,
	})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "mqtt.consume", spans[0].Name())
	assert.Equal(t, trace.SpanKindConsumer, spans[0].SpanKind())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "mqtt", attrs["messaging.system"].AsString())
	assert.Equal(t, "test", attrs["messaging.destination"].AsString())
	assert.Equal(t, int64(7), attrs["messaging.message.id"].AsInt64())
	assert.Equal(t, int64(1), attrs["messaging.mqtt.qos"].AsInt64())
	assert.True(t, attrs["messaging.mqtt.duplicate"].AsBool())
	assert.Equal(t, int64(5), attrs["messaging.message.body.size"].AsInt64())
}
