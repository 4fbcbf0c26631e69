package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenmart/greenmart-backend/pkg/clock"
	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/greenmart/greenmart-backend/pkg/database"
	"github.com/greenmart/greenmart-backend/pkg/handlers"
	"github.com/greenmart/greenmart-backend/pkg/logger"
	"github.com/greenmart/greenmart-backend/pkg/repository"
	"github.com/greenmart/greenmart-backend/pkg/tracking"
	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) *logrus.Logger {
			return logger.Setup(cfg.Log)
		},
		func(log *logrus.Logger) logrus.FieldLogger {
			return log
		},
	),
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewMongoClient,
		func(client *mongo.Client, cfg config.Config) *mongo.Database {
			return client.Database(cfg.Mongo.Database)
		},
	),
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		func() *voucher.Normalizer {
			return voucher.NewNormalizer(voucher.KeySafeIDs, voucher.QuantityDefaultToOne)
		},
		repository.NewTrackingRepository,
		repository.NewUserRepository,
	),
)

var ServiceModule = fx.Module("service",
	fx.Provide(
		clock.NewRealClock,
		fx.Annotate(
			func(repo *repository.TrackingRepository, clk clock.Clock) *tracking.Service {
				return tracking.NewService(repo, clk)
			},
			fx.As(new(tracking.Log)),
		),
	),
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		func(client *mongo.Client) handlers.Pinger { return client },
		func(repo *repository.UserRepository) handlers.VoucherHoldings { return repo },
		handlers.NewHealthHandler,
		handlers.NewTrackingHandler,
		handlers.NewVoucherHandler,
		NewEngine,
	),
	fx.Invoke(handlers.NewRouter),
)

// NewMongoClient never fails on an unreachable server: the driver reconnects on its own,
// so the API starts degraded and /health reports the database as down.
func NewMongoClient(lc fx.Lifecycle, cfg config.Config, log *logrus.Logger) (*mongo.Client, error) {
	client, err := database.Connect(cfg.Mongo)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
			defer cancel()

			fields := logrus.Fields{"database": cfg.Mongo.Database}
			if err := database.Ping(pingCtx, client); err != nil {
				log.WithFields(fields).WithError(err).Error("Database: Unreachable, serving without it")
				return nil
			}
			if err := database.EnsureIndexes(ctx, client.Database(cfg.Mongo.Database)); err != nil {
				log.WithFields(fields).WithError(err).Warn("Database: Failed to ensure indexes")
			}
			log.WithFields(fields).Info("Database: Connected")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return database.CloseDB(ctx, client)
		},
	})

	return client, nil
}

func NewEngine(cfg config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	return gin.New()
}

func NewHTTPServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *logrus.Logger, shutdowner fx.Shutdowner) *http.Server {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.WithFields(logrus.Fields{"address": srv.Addr, "mode": gin.Mode()}).Info("Starting service")
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("Failed to start service")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down service...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})

	return srv
}
