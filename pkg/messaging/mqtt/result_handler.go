package mqtt

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// resultHandler classifies the outcome of a single message. It is the
// isolation boundary: every result ends here as a log line.
type resultHandler struct {
	log     *zap.Logger
	metrics *messageMetrics
}

func newResultHandler(log *zap.Logger, metrics *messageMetrics) *resultHandler {
	return &resultHandler{
		log:     log,
		metrics: metrics,
	}
}

func (h *resultHandler) handle(ctx context.Context, err error, msg Message, span trace.Span) {
	var panicErr *PanicError

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "message processed successfully")
		h.metrics.messageHandled(ctx, msg.Topic, outcomeProcessed)

	case errors.Is(err, ErrSkipMessage):
		span.SetStatus(codes.Ok, "message skipped")
		h.log.Info("skipping message", h.messageFieldsWithError(msg, err)...)
		h.metrics.messageHandled(ctx, msg.Topic, outcomeSkipped)

	case errors.As(err, &panicErr):
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler panicked")
		h.log.Error("recovered panic while processing message", append(h.messageFields(msg),
			zap.Any("panic", panicErr.Panic),
			zap.ByteString("stack", panicErr.Stack),
		)...)
		h.metrics.messageHandled(ctx, msg.Topic, outcomePanicked)

	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		span.SetStatus(codes.Error, "processing interrupted by shutdown")
		h.log.Info("message processing interrupted by shutdown", h.messageFields(msg)...)
		h.metrics.messageHandled(ctx, msg.Topic, outcomeFailed)

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "message processing failed")
		h.log.Error("failed to process message", h.messageFieldsWithError(msg, err)...)
		h.metrics.messageHandled(ctx, msg.Topic, outcomeFailed)
	}
}

func (h *resultHandler) messageFields(msg Message) []zap.Field {
	return []zap.Field{
		zap.String("topic", msg.Topic),
		zap.Uint16("message_id", msg.ID),
		zap.Int("payload_size", len(msg.Payload)),
	}
}

func (h *resultHandler) messageFieldsWithError(msg Message, err error) []zap.Field {
	return append(h.messageFields(msg), zap.Error(err))
}
