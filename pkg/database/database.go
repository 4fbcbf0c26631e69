package database

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection         = "users"
	OrderTrackingCollection = "orderTrackings"
)

// Connect builds a client for cfg.URI. The driver dials lazily, so a nil error does not
// mean the server is reachable; call Ping for that.
func Connect(cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create mongo client")
	}
	return client, nil
}

func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "unable to ping database")
	}
	return nil
}

// InitDB connects, checks the server answers and makes sure the indexes exist.
func InitDB(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := Connect(cfg)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := Ping(pingCtx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(cfg.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "unable to create indexes")
	}

	return client, db, nil
}

func CloseDB(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	return errors.Wrap(client.Disconnect(ctx), "unable to disconnect")
}
