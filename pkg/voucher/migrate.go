package voucher

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the slice of the users collection the batch passes need.
type UserStore interface {
	// EachUser calls fn with every user document in turn. Returning an error from fn
	// stops the iteration.
	EachUser(ctx context.Context, fn func(doc bson.Raw) error) error
	// ReplaceVouchers overwrites users.vouchers. With a non-nil guard the write only
	// applies while the stored value still equals guard. It reports whether a document
	// was matched.
	ReplaceVouchers(ctx context.Context, userID primitive.ObjectID, holdings Holdings, guard *bson.RawValue) (bool, error)
	// ResetVouchers sets users.vouchers to an empty document.
	ResetVouchers(ctx context.Context, userID primitive.ObjectID) error
}

type MigrateOptions struct {
	DryRun bool
	// Guard makes every write a compare-and-swap against the value read, so a
	// redemption landing between the read and the write is not lost.
	Guard         bool
	ProgressEvery int
}

type Summary struct {
	Scanned    int
	Migrated   int
	Unchanged  int
	Conflicted int
	Failed     int
	Dropped    int
}

// Migrator rewrites every user's vouchers into canonical form, one user at a time.
type Migrator struct {
	store      UserStore
	normalizer *Normalizer
	log        logrus.FieldLogger
	opts       MigrateOptions
}

func NewMigrator(store UserStore, normalizer *Normalizer, log logrus.FieldLogger, opts MigrateOptions) *Migrator {
	return &Migrator{store: store, normalizer: normalizer, log: log, opts: opts}
}

// Run sweeps all users. A user that cannot be decoded, normalized or written is logged
// and counted; the sweep goes on. Only a failure of the sweep itself is returned.
func (m *Migrator) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	err := m.store.EachUser(ctx, func(doc bson.Raw) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sum.Scanned++
		m.migrateOne(ctx, doc, &sum)
		if m.opts.ProgressEvery > 0 && sum.Scanned%m.opts.ProgressEvery == 0 {
			m.log.WithFields(logrus.Fields{
				"scanned":  sum.Scanned,
				"migrated": sum.Migrated,
				"failed":   sum.Failed,
			}).Info("Migrate: progress")
		}
		return nil
	})

	m.log.WithFields(logrus.Fields{
		"scanned":    sum.Scanned,
		"migrated":   sum.Migrated,
		"unchanged":  sum.Unchanged,
		"conflicted": sum.Conflicted,
		"failed":     sum.Failed,
		"dropped":    sum.Dropped,
		"dry_run":    m.opts.DryRun,
	}).Info("Migrate: finished")

	if err != nil {
		return sum, errors.Wrap(err, "migrate vouchers")
	}
	return sum, nil
}

func (m *Migrator) migrateOne(ctx context.Context, doc bson.Raw, sum *Summary) {
	var user models.User
	if err := bson.Unmarshal(doc, &user); err != nil {
		sum.Failed++
		m.log.WithError(err).Error("Migrate: Failed to decode user")
		return
	}

	log := m.log.WithField("user_id", user.ID.Hex())

	res, err := m.normalizer.Normalize(user.Vouchers)
	if err != nil {
		sum.Failed++
		log.WithError(err).Warn("Migrate: Skipping user with unreadable vouchers")
		return
	}
	sum.Dropped += res.Dropped
	if res.Dropped > 0 {
		log.WithField("dropped", res.Dropped).Warn("Migrate: Dropped malformed voucher entries")
	}

	if !res.NeedsWrite {
		sum.Unchanged++
		return
	}

	log = log.WithFields(logrus.Fields{
		"shape":    res.Shape.String(),
		"vouchers": len(res.Holdings),
	})
	if m.opts.DryRun {
		sum.Migrated++
		log.Info("Migrate: Would rewrite vouchers")
		return
	}

	var guard *bson.RawValue
	if m.opts.Guard {
		guard = &user.Vouchers
	}

	matched, err := m.store.ReplaceVouchers(ctx, user.ID, res.Holdings, guard)
	if err != nil {
		sum.Failed++
		log.WithError(err).Error("Migrate: Failed to write vouchers")
		return
	}
	if !matched {
		sum.Conflicted++
		log.Warn("Migrate: User changed or vanished before write, skipped")
		return
	}

	sum.Migrated++
	log.Debug("Migrate: Rewrote vouchers")
}
