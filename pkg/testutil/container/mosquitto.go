package container

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MosquittoContainer wraps an Eclipse Mosquitto broker started for tests.
type MosquittoContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// MosquittoOption configures the Mosquitto container.
type MosquittoOption func(*mosquittoOptions)

type mosquittoOptions struct {
	image string
}

// WithMosquittoImage sets the Mosquitto image to use.
func WithMosquittoImage(image string) MosquittoOption {
	return func(o *mosquittoOptions) {
		o.image = image
	}
}

// StartMosquittoContainer starts a broker that accepts anonymous clients on 1883.
func StartMosquittoContainer(ctx context.Context, opts ...MosquittoOption) (*MosquittoContainer, error) {
	options := &mosquittoOptions{
		image: "eclipse-mosquitto:2.0",
	}
	for _, opt := range opts {
		opt(options)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        options.image,
			ExposedPorts: []string{"1883/tcp"},
			// the image ships a listener config without authentication
			Cmd: []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("1883/tcp"),
				wait.ForLog("running"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mosquitto container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "1883")
	if err != nil {
		_ = container.Terminate(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to get mosquitto port: %w", err)
	}

	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		_ = container.Terminate(ctx) //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("invalid mosquitto port %q: %w", mapped.Port(), err)
	}

	return &MosquittoContainer{
		Container: container,
		Host:      host,
		Port:      port,
	}, nil
}

// BrokerURL returns the tcp:// address for paho clients.
func (m *MosquittoContainer) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", m.Host, m.Port)
}

// Terminate terminates the container.
func (m *MosquittoContainer) Terminate(ctx context.Context) error {
	if m.Container != nil {
		return m.Container.Terminate(ctx)
	}
	return nil
}
