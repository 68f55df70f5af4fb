package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RabbitMQImage is the broker image used by integration tests
const RabbitMQImage = "rabbitmq:3.13-alpine"

// RabbitMQ describes a running broker container
type RabbitMQ struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

// StartRabbitMQ starts a broker container and terminates it when the test ends.
// The test fails immediately if the container does not become ready.
func StartRabbitMQ(t *testing.T, ctx context.Context) *RabbitMQ {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        RabbitMQImage,
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server startup complete"),
			wait.ForListeningPort("5672/tcp"),
		).WithDeadline(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start rabbitmq container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate rabbitmq container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("rabbitmq host: %v", err)
	}

	mapped, err := container.MappedPort(ctx, "5672")
	if err != nil {
		t.Fatalf("rabbitmq port: %v", err)
	}

	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		t.Fatalf("parse rabbitmq port %q: %v", mapped.Port(), err)
	}

	return &RabbitMQ{Container: container, Host: host, Port: port}
}
