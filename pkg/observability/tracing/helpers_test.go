package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogFields(t *testing.T) {
	t.Run("empty without span", func(t *testing.T) {
		assert.Empty(t, LogFields(context.Background()))
	})

	t.Run("trace and span ids from recording span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		ctx, span := tp.Tracer("test").Start(context.Background(), "op")
		defer span.End()

		fields := LogFields(ctx)

		require.Len(t, fields, 2)
		assert.Equal(t, "trace_id", fields[0].Key)
		assert.Equal(t, span.SpanContext().TraceID().String(), fields[0].String)
		assert.Equal(t, "span_id", fields[1].Key)
		assert.Equal(t, span.SpanContext().SpanID().String(), fields[1].String)
	})
}
