package main

import (
	"fmt"

	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type migrateFlags struct {
	dryRun       bool
	guard        bool
	strictIDs    bool
	zeroQuantity string
}

func migrateCmd() *cobra.Command {
	var flags migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite every user's vouchers as a {voucherId: count} map",
		Long: `Scan the users collection and rewrite users.vouchers into the canonical
{voucherId: count} map.

Accepted legacy encodings:
  - an array of voucher ids, where a repeated id counts once per occurrence
  - an array of {voucherId, quantity} records, where a missing quantity counts as 1

Users already in canonical form, and users without vouchers, are left untouched.
A user that cannot be converted is logged and skipped; the pass continues.

Examples:
  vouchers migrate --dry-run
  vouchers migrate --guard --zero-quantity=drop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&flags.guard, "guard", false, "skip users whose vouchers changed between read and write")
	cmd.Flags().BoolVar(&flags.strictIDs, "strict-ids", false, "only accept 24 character hex object ids")
	cmd.Flags().StringVar(&flags.zeroQuantity, "zero-quantity", "default", "how to count records with quantity <= 0 (default|drop)")

	return cmd
}

func runMigrate(cmd *cobra.Command, flags migrateFlags) error {
	policy, err := voucher.ParseQuantityPolicy(flags.zeroQuantity)
	if err != nil {
		return err
	}
	ids := voucher.KeySafeIDs
	if flags.strictIDs {
		ids = voucher.ObjectIDs
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	normalizer := voucher.NewNormalizer(ids, policy)
	migrator := voucher.NewMigrator(e.users(normalizer), normalizer, e.log, voucher.MigrateOptions{
		DryRun:        flags.dryRun,
		Guard:         flags.guard,
		ProgressEvery: e.cfg.Migration.ProgressEvery,
	})

	e.log.WithFields(logrus.Fields{
		"dry_run":       flags.dryRun,
		"guard":         flags.guard,
		"strict_ids":    flags.strictIDs,
		"zero_quantity": flags.zeroQuantity,
	}).Info("Starting voucher migration")

	sum, err := migrator.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.dryRun {
		fmt.Fprintln(out, "Dry run - no changes made")
	}
	fmt.Fprintf(out, "Scanned:    %d\n", sum.Scanned)
	fmt.Fprintf(out, "Migrated:   %d\n", sum.Migrated)
	fmt.Fprintf(out, "Unchanged:  %d\n", sum.Unchanged)
	fmt.Fprintf(out, "Conflicted: %d\n", sum.Conflicted)
	fmt.Fprintf(out, "Failed:     %d\n", sum.Failed)
	fmt.Fprintf(out, "Dropped:    %d entries\n", sum.Dropped)
	return nil
}
