package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/greenmart/greenmart-backend/pkg/database"
	"github.com/greenmart/greenmart-backend/pkg/logger"
	"github.com/greenmart/greenmart-backend/pkg/repository"
	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "vouchers",
		Short:        "Maintenance passes over users.vouchers",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Int("progress", 100, "log progress every N users (0 disables)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(cleanupCmd())

	return rootCmd
}

// env is what every subcommand needs once flags are parsed.
type env struct {
	cfg    config.Config
	log    *logrus.Logger
	client *mongo.Client
	db     *mongo.Database
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// operators read this in a terminal
	cfg.Log.Format = "text"
	log := logger.Setup(cfg.Log)

	if cmd.Flags().Changed("progress") {
		cfg.Migration.ProgressEvery, _ = cmd.Flags().GetInt("progress")
	}
	if cfg.Migration.ProgressEvery < 0 {
		return nil, errors.Newf("--progress must not be negative, got %d", cfg.Migration.ProgressEvery)
	}

	client, db, err := database.InitDB(cmd.Context(), cfg.Mongo)
	if err != nil {
		return nil, errors.Wrap(err, "cannot reach the database")
	}
	log.WithFields(logrus.Fields{"database": cfg.Mongo.Database}).Info("Connected")

	return &env{cfg: cfg, log: log, client: client, db: db}, nil
}

func (e *env) close() {
	if err := database.CloseDB(context.Background(), e.client); err != nil {
		e.log.WithError(err).Warn("Failed to disconnect")
	}
}

func (e *env) users(normalizer *voucher.Normalizer) *repository.UserRepository {
	return repository.NewUserRepository(e.db, normalizer)
}
