//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/greenmart/greenmart-backend/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoPort = nat.Port("27017/tcp")

var mongoURI string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{string(mongoPort)},
			WaitingFor:   wait.ForListeningPort(mongoPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err == nil {
		var port nat.Port
		port, err = container.MappedPort(ctx, mongoPort)
		mongoURI = fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	}
	if err != nil {
		_ = container.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to resolve mongo address: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate mongo container: %v\n", err)
	}
	os.Exit(code)
}

// newTestDB gives each test its own database on the shared container.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	cfg := config.NewTestConfig().Mongo
	cfg.URI = mongoURI
	cfg.Database = "greenmart_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, db, err := database.InitDB(ctx, cfg)
	require.NoError(t, err, "failed to prepare test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = database.CloseDB(ctx, client)
	})
	return db
}
