package mqtt

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/core/logger"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/observability/tracing"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const reconnectThrottleKey = "mqtt-reconnect"

// Manager owns a single broker session: bounded initial connect, subscribe
// on every Connected, managed reconnection and in-order dispatch to Handler.
type Manager struct {
	client    Client
	handler   Handler
	conf      Config
	log       *zap.Logger
	throttler *logger.LogThrottler
	tracer    MessageTracer
	metrics   *messageMetrics
	results   *resultHandler
	sessions  int
}

func NewManager(
	client Client,
	handler Handler,
	conf Config,
	log *zap.Logger,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Manager, error) {
	metrics, err := newMessageMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Manager{
		client:    client,
		handler:   handler,
		conf:      conf,
		log:       log,
		throttler: logger.NewLogThrottler(log, time.Minute),
		tracer:    newMessageTracer(tp),
		metrics:   metrics,
		results:   newResultHandler(log, metrics),
	}, nil
}

// Run connects, then consumes client events until ctx is cancelled. It
// returns an error wrapping ErrConnectRetriesExhausted when the initial
// connect never succeeds; that is the only non-nil return.
func (m *Manager) Run(ctx context.Context) error {
	connected, err := m.connect(ctx)
	if err != nil {
		m.client.Disconnect()
		return err
	}
	if !connected {
		// a CONNECT already on the wire may still complete after cancellation
		m.client.Disconnect()
		m.log.Info("connect cancelled before a session was established")
		return nil
	}
	defer m.disconnect()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-m.client.Events():
			if !ok {
				m.log.Warn("client event stream closed")
				return nil
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *Manager) connect(ctx context.Context) (bool, error) {
	maxAttempts := m.conf.ConnectMaxRetries
	attempt := 0

	operation := func() error {
		attempt++
		m.log.Info("connecting to broker",
			zap.String("broker", m.conf.BrokerURL()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
		)
		err := m.client.Connect(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		m.log.Warn("connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.conf.ConnectRetryDelay), uint64(maxAttempts-1)),
		ctx,
	)
	err := backoff.RetryNotify(operation, policy, func(_ error, next time.Duration) {
		m.log.Info("retrying connection", zap.Duration("delay", next))
	})

	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, nil
	default:
		m.log.Error("could not connect to broker, giving up",
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w after %d attempts: %w", ErrConnectRetriesExhausted, attempt, err)
	}
}

func (m *Manager) handleEvent(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case Connected:
		m.sessions++
		m.metrics.sessionEstablished(ctx)
		m.log.Info("connected to broker", zap.Int("session", m.sessions))
		m.subscribe(ctx)

	case Disconnected:
		if e.Code == DisconnectNormal {
			m.log.Info("disconnected from broker", zap.Stringer("code", e.Code))
			return
		}
		m.log.Warn("disconnected from broker",
			zap.Stringer("code", e.Code),
			zap.Int("rc", int(e.Code)),
			zap.Error(e.Err),
		)
		m.reconnect(ctx)

	case MessageReceived:
		m.dispatch(ctx, e.Message)

	default:
		m.log.Warn("ignoring unknown client event", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

// subscribe waits for SUBACK while still draining client events. With ordered
// delivery paho's router blocks on a full event buffer, and a persistent
// session can replay more messages than the buffer holds before the SUBACK
// is read. Events drained here are handled in arrival order afterwards.
func (m *Manager) subscribe(ctx context.Context) {
	done := make(chan error, 1)
	go func() {
		done <- m.client.Subscribe(ctx, m.conf.Topic, byte(m.conf.QoS))
	}()

	var (
		backlog []Event
		err     error
		events  = m.client.Events()
	)
waitAck:
	for {
		select {
		case err = <-done:
			break waitAck
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			backlog = append(backlog, ev)
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.log.Error("subscription failed, restarting session",
			zap.String("topic", m.conf.Topic),
			zap.Error(err),
		)
		// messages delivered before the failure are still processed; the
		// session events are superseded by the restart
		for _, ev := range backlog {
			if msg, ok := ev.(MessageReceived); ok {
				m.dispatch(ctx, msg.Message)
			}
		}
		m.client.Disconnect()
		m.reconnect(ctx)
		return
	}
	m.log.Info("subscribed to topic",
		zap.String("topic", m.conf.Topic),
		zap.Int("qos", m.conf.QoS),
		zap.Int("backlog", len(backlog)),
	)
	for _, ev := range backlog {
		m.handleEvent(ctx, ev)
	}
}

// reconnect retries until a new session is up or ctx is cancelled. The
// Connected event of the new session triggers the subscription.
func (m *Manager) reconnect(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.conf.ReconnectMinDelay
	policy.MaxInterval = m.conf.ReconnectMaxDelay
	policy.MaxElapsedTime = 0
	policy.Reset()

	attempt := 0
	operation := func() error {
		attempt++
		err := m.client.Connect(ctx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		m.throttler.Warn(reconnectThrottleKey, "reconnect attempt failed",
			zap.Int("attempt", attempt),
			zap.Duration("next_retry", next),
			zap.Error(err),
		)
	})
	if err != nil {
		return
	}

	m.throttler.Reset(reconnectThrottleKey)
	m.log.Info("reconnected to broker", zap.Int("attempts", attempt))
}

func (m *Manager) dispatch(ctx context.Context, msg Message) {
	ctx, span := m.tracer.StartConsumerSpan(ctx, msg)
	defer span.End()

	m.metrics.messageReceived(ctx, msg.Topic)
	fields := append([]zap.Field{
		zap.String("topic", msg.Topic),
		zap.Uint16("message_id", msg.ID),
	}, tracing.LogFields(ctx)...)
	ctx = logger.WithFields(ctx, m.log, fields...)

	err := m.handleWithPanicRecovery(ctx, msg)
	m.results.handle(ctx, err, msg, span)
}

func (m *Manager) handleWithPanicRecovery(ctx context.Context, msg Message) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{
				Panic: rec,
				Stack: debug.Stack(),
			}
		}
	}()

	return m.handler.HandleMessage(ctx, msg)
}

func (m *Manager) disconnect() {
	m.client.Disconnect()
	m.log.Info("disconnected from broker", zap.Stringer("code", DisconnectNormal))
}
