package tracking

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/clock"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/greenmart/greenmart-backend/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEntryNotFound = errors.New("tracking entry not found")
	ErrInvalidEntry  = errors.New("invalid tracking entry")
)

//go:generate mockgen -source=service.go -destination=mock_tracking/mock_service.go -package=mock_tracking

// Store persists checkpoints. Update and Delete report a missing entry with
// repository.ErrTrackingNotFound.
type Store interface {
	Insert(ctx context.Context, entry *models.OrderTracking) error
	FindByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderTracking, error)
	Update(ctx context.Context, id primitive.ObjectID, location models.Location, status string, updatedAt time.Time) (*models.OrderTracking, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Log is what the HTTP layer needs from the tracking log.
type Log interface {
	Append(ctx context.Context, in AppendInput) (*models.OrderTracking, error)
	History(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderTracking, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.OrderTracking, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type AppendInput struct {
	OrderID  primitive.ObjectID
	Location models.Location
	Status   string
	// UpdatedAt defaults to now.
	UpdatedAt *time.Time
}

type UpdateInput struct {
	Location models.Location
	Status   string
}

// Service keeps an append-only history of checkpoints per order. Status is an opaque
// label; no transition between statuses is refused here.
type Service struct {
	store Store
	clock clock.Clock
}

func NewService(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

var _ Log = (*Service)(nil)

func (s *Service) Append(ctx context.Context, in AppendInput) (*models.OrderTracking, error) {
	if in.OrderID.IsZero() {
		return nil, errors.Wrap(ErrInvalidEntry, "orderId is required")
	}
	if err := validate(in.Location, in.Status); err != nil {
		return nil, err
	}

	entry := &models.OrderTracking{
		OrderID:   in.OrderID,
		Location:  in.Location,
		Status:    in.Status,
		UpdatedAt: s.clock.Now(),
	}
	if in.UpdatedAt != nil {
		entry.UpdatedAt = in.UpdatedAt.UTC().Truncate(time.Millisecond)
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, errors.Wrap(err, "append checkpoint")
	}
	return entry, nil
}

// History returns every checkpoint of the order, oldest first. An order without
// checkpoints yields an empty slice.
func (s *Service) History(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderTracking, error) {
	entries, err := s.store.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "load history")
	}
	if entries == nil {
		entries = make([]models.OrderTracking, 0)
	}

	slices.SortStableFunc(entries, func(a, b models.OrderTracking) int {
		if c := a.UpdatedAt.Compare(b.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.Hex(), b.ID.Hex())
	})
	return entries, nil
}

// UpdateByID corrects one existing checkpoint in place and stamps it with the current
// time. It never creates a checkpoint; use Append for that.
func (s *Service) UpdateByID(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.OrderTracking, error) {
	if err := validate(in.Location, in.Status); err != nil {
		return nil, err
	}

	entry, err := s.store.Update(ctx, id, in.Location, in.Status, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrTrackingNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, errors.Wrap(err, "update checkpoint")
	}
	return entry, nil
}

func (s *Service) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTrackingNotFound) {
			return ErrEntryNotFound
		}
		return errors.Wrap(err, "delete checkpoint")
	}
	return nil
}

func validate(loc models.Location, status string) error {
	if strings.TrimSpace(status) == "" {
		return errors.Wrap(ErrInvalidEntry, "status is required")
	}
	if !finite(loc.Lat) || loc.Lat < -90 || loc.Lat > 90 {
		return errors.Wrapf(ErrInvalidEntry, "lat %v out of range", loc.Lat)
	}
	if !finite(loc.Lng) || loc.Lng < -180 || loc.Lng > 180 {
		return errors.Wrapf(ErrInvalidEntry, "lng %v out of range", loc.Lng)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
