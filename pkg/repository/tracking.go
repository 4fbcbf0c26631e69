package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/database"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TrackingRepository struct {
	coll *mongo.Collection
}

func NewTrackingRepository(db *mongo.Database) *TrackingRepository {
	return &TrackingRepository{coll: db.Collection(database.OrderTrackingCollection)}
}

func (r *TrackingRepository) Insert(ctx context.Context, entry *models.OrderTracking) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return errors.Wrap(err, "failed to insert tracking entry")
	}
	return nil
}

// FindByOrder returns the order's entries oldest first.
func (r *TrackingRepository) FindByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderTracking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{"orderId": orderID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find tracking entries")
	}

	entries := make([]models.OrderTracking, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode tracking entries")
	}
	return entries, nil
}

// Update overwrites location, status and updatedAt and returns the entry as stored
// afterwards.
func (r *TrackingRepository) Update(ctx context.Context, id primitive.ObjectID, location models.Location, status string, updatedAt time.Time) (*models.OrderTracking, error) {
	update := bson.M{"$set": bson.M{
		"location":  location,
		"status":    status,
		"updatedAt": updatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.OrderTracking
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTrackingNotFound
		}
		return nil, errors.Wrap(err, "failed to update tracking entry")
	}
	return &entry, nil
}

func (r *TrackingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "failed to delete tracking entry")
	}
	if res.DeletedCount == 0 {
		return ErrTrackingNotFound
	}
	return nil
}
