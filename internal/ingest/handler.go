package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/logger"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/messaging/mqtt"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	FirstNameKey = "first_name"
	LastNameKey  = "last_name"
)

var identityKeys = []string{FirstNameKey, LastNameKey}

// ErrMissingIdentity marks a message without first_name or last_name. It is
// skipped, not failed.
var ErrMissingIdentity = fmt.Errorf("message has no identity: %w", mqtt.ErrSkipMessage)

// Handler turns broker messages into stored events. Errors are returned to the
// dispatcher, which logs them and moves on to the next message.
type Handler struct {
	decoder  *Decoder
	clock    Clock
	gateway  Gateway
	logLimit int
	tracer   trace.Tracer
	metrics  *ingestMetrics
}

func NewHandler(decoder *Decoder, clock Clock, gateway Gateway, conf Config, tp trace.TracerProvider, mp metric.MeterProvider) (*Handler, error) {
	metrics, err := newIngestMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Handler{
		decoder:  decoder,
		clock:    clock,
		gateway:  gateway,
		logLimit: conf.PayloadLogLimit,
		tracer:   tp.Tracer("event-ingest"),
		metrics:  metrics,
	}, nil
}

func (h *Handler) HandleMessage(ctx context.Context, msg mqtt.Message) error {
	log := logger.Get(ctx)
	h.metrics.add(ctx, h.metrics.received, msg.Topic)

	text, data := h.decoder.Decode(msg.Payload)
	// topic and message_id are carried by the dispatcher's logger
	log.Info("message received", zap.String("payload", preview(text, h.logLimit)))

	event, err := h.newEvent(msg.Topic, data)
	if err != nil {
		h.metrics.add(ctx, h.metrics.skipped, msg.Topic)
		return err
	}

	ctx, span := h.tracer.Start(ctx, "ingest.commit", trace.WithAttributes(
		attribute.String("db.collection.name", "event"),
		attribute.String("messaging.destination", msg.Topic),
	))
	defer span.End()

	if err := h.gateway.Commit(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		if !errors.Is(err, context.Canceled) {
			h.metrics.add(ctx, h.metrics.failed, msg.Topic)
		}
		return fmt.Errorf("failed to store event: %w", err)
	}
	span.SetAttributes(attribute.Int64("event.id", event.ID))
	h.metrics.add(ctx, h.metrics.stored, msg.Topic)

	log.Info("event stored",
		zap.Int64("id", event.ID),
		zap.String("first_name", event.FirstName),
		zap.String("last_name", event.LastName),
	)
	return nil
}

func (h *Handler) newEvent(topic string, data map[string]any) (*Event, error) {
	first, hasFirst := data[FirstNameKey]
	last, hasLast := data[LastNameKey]
	if !hasFirst || !hasLast {
		missing := lo.Reject(identityKeys, func(key string, _ int) bool {
			_, ok := data[key]
			return ok
		})
		return nil, fmt.Errorf("%w: missing %s", ErrMissingIdentity, strings.Join(missing, ", "))
	}

	return &Event{
		Topic:     topic,
		FirstName: fieldString(first),
		LastName:  fieldString(last),
		Timestamp: h.clock.Now(),
	}, nil
}

// preview returns at most limit characters of text; limit 0 disables truncation.
func preview(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
