package main

import (
	"fmt"

	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func cleanupCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Reset the vouchers of users holding malformed entries",
		Long: `Find users whose vouchers contain a null entry, a record without a usable
voucherId, or a "null"/"undefined" key, and reset their whole vouchers field to an
empty map. Valid entries next to the malformed one are discarded too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			cleaner := voucher.NewCleaner(e.users(voucher.NewNormalizer(nil, voucher.QuantityDefaultToOne)), e.log, voucher.CleanupOptions{
				DryRun:        dryRun,
				ProgressEvery: e.cfg.Migration.ProgressEvery,
			})

			e.log.WithFields(logrus.Fields{"dry_run": dryRun}).Info("Starting voucher cleanup")

			sum, err := cleaner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry run - no changes made")
			}
			fmt.Fprintf(out, "Scanned: %d\n", sum.Scanned)
			fmt.Fprintf(out, "Reset:   %d\n", sum.Reset)
			fmt.Fprintf(out, "Failed:  %d\n", sum.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report which users would be reset without writing")

	return cmd
}
