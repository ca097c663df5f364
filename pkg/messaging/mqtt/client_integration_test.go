package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/testutil/container"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func TestManager_WithMosquitto(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping broker integration test in short mode")
	}

	ctx := context.Background()
	broker, err := container.StartMosquittoContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = broker.Terminate(context.Background()) })

	conf := testConfig()
	conf.Host = broker.Host
	conf.Port = broker.Port
	conf.Topic = "people/arrivals"
	conf.QoS = 1
	conf.KeepAlive = 30 * time.Second
	conf.ClientIDPrefix = "subscriber"
	conf.ConnectTimeout = 5 * time.Second
	conf.DisconnectQuiesce = 100 * time.Millisecond

	received := make(chan Message, 4)
	handler := HandlerFunc(func(ctx context.Context, msg Message) error {
		received <- msg
		return nil
	})

	client := NewClient(conf, zap.NewNop())
	m, err := NewManager(client, handler, conf, zap.NewNop(), tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- m.Run(runCtx) }()

	publisher := paho.NewClient(paho.NewClientOptions().
		AddBroker(broker.BrokerURL()).
		SetClientID("publisher"))
	token := publisher.Connect()
	require.True(t, token.WaitTimeout(5*time.Second))
	require.NoError(t, token.Error())
	defer publisher.Disconnect(100)

	// retained so the message survives a subscription race
	payload := `{"first_name":"Ana","last_name":"Lopez"}`
	pub := publisher.Publish(conf.Topic, 1, true, payload)
	require.True(t, pub.WaitTimeout(5*time.Second))
	require.NoError(t, pub.Error())

	select {
	case msg := <-received:
		assert.Equal(t, conf.Topic, msg.Topic)
		assert.Equal(t, payload, string(msg.Payload))
		assert.False(t, msg.ReceivedAt.IsZero())
	case <-time.After(10 * time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
}

func TestManager_UnreachableBrokerExhaustsRetries(t *testing.T) {
	conf := testConfig()
	conf.Host = "127.0.0.1"
	conf.Port = 1 // nothing listens here
	conf.ConnectMaxRetries = 2
	conf.ConnectTimeout = time.Second

	client := NewClient(conf, zap.NewNop())
	m, err := NewManager(client, &recordingHandler{}, conf, zap.NewNop(), tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)

	err = m.Run(context.Background())

	assert.ErrorIs(t, err, ErrConnectRetriesExhausted)
}
