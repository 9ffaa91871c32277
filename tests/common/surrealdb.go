// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultSurrealDBImage is the image started when BASKET_TEST_SURREALDB_IMAGE is unset.
const DefaultSurrealDBImage = "surrealdb/surrealdb:v3.0.0"

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer wraps a testcontainers SurrealDB instance.
type SurrealDBContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// StartSurrealDB starts one SurrealDB container shared by every test in the
// process. Tests are skipped under -short since they need Docker.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("SurrealDB container tests skipped in -short mode")
	}

	surrealOnce.Do(func() {
		surrealContainer, surrealError = startSurrealDB(context.Background())
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}

	return surrealContainer
}

func startSurrealDB(ctx context.Context) (*SurrealDBContainer, error) {
	image := os.Getenv("BASKET_TEST_SURREALDB_IMAGE")
	if image == "" {
		image = DefaultSurrealDBImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--user", "root", "--pass", "root"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("8000/tcp"),
				wait.ForLog("Started web server"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start SurrealDB container (%s): %w", image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get SurrealDB host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "8000/tcp")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get SurrealDB port: %w", err)
	}

	return &SurrealDBContainer{
		container: container,
		host:      host,
		port:      mappedPort.Port(),
	}, nil
}

// Address returns the WebSocket RPC address for SurrealDB.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *SurrealDBContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
