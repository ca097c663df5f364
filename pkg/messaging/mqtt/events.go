package mqtt

import (
	"context"
	"time"
)

// DisconnectCode tells an intentional disconnect apart from a lost session.
type DisconnectCode int

const (
	DisconnectNormal         DisconnectCode = 0
	DisconnectConnectionLost DisconnectCode = 7
)

func (c DisconnectCode) String() string {
	switch c {
	case DisconnectNormal:
		return "normal"
	case DisconnectConnectionLost:
		return "connection lost"
	default:
		return "unknown"
	}
}

// Event is emitted by a Client and consumed by a single Manager loop.
type Event interface {
	event()
}

// Connected fires once per established session.
type Connected struct{}

// Disconnected fires on every session loss.
type Disconnected struct {
	Code DisconnectCode
	Err  error
}

// MessageReceived fires once per inbound publish, in arrival order.
type MessageReceived struct {
	Message Message
}

func (Connected) event()       {}
func (Disconnected) event()    {}
func (MessageReceived) event() {}

type Message struct {
	Topic      string
	Payload    []byte
	ID         uint16
	QoS        byte
	Duplicate  bool
	Retained   bool
	ReceivedAt time.Time
}

// Handler processes a single message. A returned error is logged by the
// manager and never stops the receive loop.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Client is the broker session as seen by the Manager. Implementations push
// notifications to Events and must not invoke the handler themselves.
type Client interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, topic string, qos byte) error
	Disconnect()
	Events() <-chan Event
}
