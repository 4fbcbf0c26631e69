package voucher

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

type CleanupOptions struct {
	DryRun        bool
	ProgressEvery int
}

type CleanupSummary struct {
	Scanned int
	Reset   int
	Failed  int
}

// Cleaner wipes the vouchers of every user that still holds a malformed entry. It does
// not try to salvage the valid entries next to it.
type Cleaner struct {
	store UserStore
	log   logrus.FieldLogger
	opts  CleanupOptions
}

func NewCleaner(store UserStore, log logrus.FieldLogger, opts CleanupOptions) *Cleaner {
	return &Cleaner{store: store, log: log, opts: opts}
}

func (c *Cleaner) Run(ctx context.Context) (CleanupSummary, error) {
	var sum CleanupSummary

	err := c.store.EachUser(ctx, func(doc bson.Raw) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sum.Scanned++
		c.cleanOne(ctx, doc, &sum)
		if c.opts.ProgressEvery > 0 && sum.Scanned%c.opts.ProgressEvery == 0 {
			c.log.WithFields(logrus.Fields{
				"scanned": sum.Scanned,
				"reset":   sum.Reset,
			}).Info("Cleanup: progress")
		}
		return nil
	})

	c.log.WithFields(logrus.Fields{
		"scanned": sum.Scanned,
		"reset":   sum.Reset,
		"failed":  sum.Failed,
		"dry_run": c.opts.DryRun,
	}).Info("Cleanup: finished")

	if err != nil {
		return sum, errors.Wrap(err, "clean up vouchers")
	}
	return sum, nil
}

func (c *Cleaner) cleanOne(ctx context.Context, doc bson.Raw, sum *CleanupSummary) {
	var user models.User
	if err := bson.Unmarshal(doc, &user); err != nil {
		sum.Failed++
		c.log.WithError(err).Error("Cleanup: Failed to decode user")
		return
	}

	if !HasMalformedEntries(user.Vouchers) {
		return
	}

	log := c.log.WithField("user_id", user.ID.Hex())
	if c.opts.DryRun {
		sum.Reset++
		log.Info("Cleanup: Would reset vouchers")
		return
	}

	if err := c.store.ResetVouchers(ctx, user.ID); err != nil {
		sum.Failed++
		log.WithError(err).Error("Cleanup: Failed to reset vouchers")
		return
	}
	sum.Reset++
	log.Info("Cleanup: Reset vouchers with malformed entries")
}
