package database

import (
	"context"
	"testing"
	"time"

	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDBFailsWhenServerIsUnreachable(t *testing.T) {
	cfg := config.NewTestConfig().Mongo
	cfg.URI = "mongodb://127.0.0.1:1"
	cfg.ConnectTimeout = 300 * time.Millisecond

	start := time.Now()
	client, db, err := InitDB(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to ping database")
	assert.Nil(t, client)
	assert.Nil(t, db)
	assert.Less(t, time.Since(start), 5*time.Second, "ping should give up after the connect timeout")
}

func TestConnectRejectsMalformedURI(t *testing.T) {
	cfg := config.NewTestConfig().Mongo
	cfg.URI = "postgres://localhost:5432"

	_, err := Connect(cfg)

	assert.Error(t, err)
}

func TestCloseDBWithoutClient(t *testing.T) {
	assert.NoError(t, CloseDB(context.Background(), nil))
}
