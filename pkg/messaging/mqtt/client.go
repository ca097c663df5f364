package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type pahoClient struct {
	client   paho.Client
	conf     Config
	clientID string
	events   chan Event
	log      *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewClient builds a paho-backed Client. Paho's own reconnect logic is
// disabled; the Manager decides when to reconnect.
func NewClient(conf Config, log *zap.Logger) Client {
	c := &pahoClient{
		conf:     conf,
		clientID: fmt.Sprintf("%s-%s", conf.ClientIDPrefix, uuid.NewString()),
		events:   make(chan Event, conf.EventBufferSize),
		log:      log,
		stop:     make(chan struct{}),
	}

	opts := paho.NewClientOptions().
		AddBroker(conf.BrokerURL()).
		SetClientID(c.clientID).
		SetUsername(conf.Username).
		SetPassword(conf.Password).
		SetKeepAlive(conf.KeepAlive).
		SetConnectTimeout(conf.ConnectTimeout).
		SetCleanSession(!conf.PersistentSession).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetOrderMatters(true).
		SetOnConnectHandler(func(paho.Client) {
			c.push(Connected{})
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			c.push(Disconnected{Code: DisconnectConnectionLost, Err: err})
		}).
		SetDefaultPublishHandler(func(_ paho.Client, m paho.Message) {
			c.push(MessageReceived{Message: Message{
				Topic:      m.Topic(),
				Payload:    m.Payload(),
				ID:         m.MessageID(),
				QoS:        m.Qos(),
				Duplicate:  m.Duplicate(),
				Retained:   m.Retained(),
				ReceivedAt: time.Now(),
			}})
		})

	c.client = paho.NewClient(opts)
	log.Info("mqtt client created",
		zap.String("broker", conf.BrokerURL()),
		zap.String("client_id", c.clientID),
		zap.Duration("keep_alive", conf.KeepAlive),
	)
	return c
}

// push blocks while the buffer is full so paho applies backpressure, but
// gives up once Disconnect has been called for the current session.
func (c *pahoClient) push(ev Event) {
	select {
	case c.events <- ev:
	case <-c.stopCh():
		c.log.Debug("dropping event after disconnect", zap.String("event", fmt.Sprintf("%T", ev)))
	}
}

func (c *pahoClient) stopCh() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop
}

func (c *pahoClient) Events() <-chan Event {
	return c.events
}

func (c *pahoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	select {
	case <-c.stop:
		c.stop = make(chan struct{})
	default:
	}
	c.mu.Unlock()

	if err := wait(ctx, c.client.Connect()); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.conf.BrokerURL(), err)
	}
	return nil
}

func (c *pahoClient) Subscribe(ctx context.Context, topic string, qos byte) error {
	// nil callback routes messages to the default publish handler
	if err := wait(ctx, c.client.Subscribe(topic, qos, nil)); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return nil
}

func (c *pahoClient) Disconnect() {
	c.mu.Lock()
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	c.mu.Unlock()

	// paho aborts a CONNECT still in progress and is a no-op when already
	// disconnected, so this is safe on every path.
	c.client.Disconnect(uint(c.conf.DisconnectQuiesce / time.Millisecond))
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
