package database

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes is idempotent: creating an index that already exists with the same
// definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(OrderTrackingCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}, {Key: "updatedAt", Value: 1}},
		Options: options.Index().SetName("orderId_updatedAt"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create orderTrackings index")
	}
	return nil
}
