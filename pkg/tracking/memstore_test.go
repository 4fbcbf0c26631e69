package tracking_test

import (
	"context"
	"time"

	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/greenmart/greenmart-backend/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore hands entries back in insertion order, not time order, so the service's own
// ordering is what the tests observe.
type memStore struct {
	entries []models.OrderTracking
}

func (s *memStore) Insert(_ context.Context, entry *models.OrderTracking) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memStore) FindByOrder(_ context.Context, orderID primitive.ObjectID) ([]models.OrderTracking, error) {
	var out []models.OrderTracking
	for _, e := range s.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) Update(_ context.Context, id primitive.ObjectID, loc models.Location, status string, at time.Time) (*models.OrderTracking, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Location = loc
			s.entries[i].Status = status
			s.entries[i].UpdatedAt = at
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrTrackingNotFound
}

func (s *memStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrTrackingNotFound
}
