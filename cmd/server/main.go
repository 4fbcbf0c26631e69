package main

import (
	"context"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
)

var appModule = fx.Options(
	ConfigModule,
	DBModule,
	RepositoryModule,
	ServiceModule,
	HandlerModule,
	fx.Provide(NewHTTPServer),
	fx.Invoke(func(*http.Server) {}),
)

func main() {
	app := fx.New(
		appModule,
		fx.NopLogger,
	)

	if err := app.Start(context.Background()); err != nil {
		logrus.WithError(err).Error("Failed to start application")
		os.Exit(1)
	}

	sig := <-app.Wait()

	if err := app.Stop(context.Background()); err != nil {
		logrus.WithError(err).Error("Service forced to shutdown")
		os.Exit(1)
	}

	logrus.Info("Service exited")
	os.Exit(sig.ExitCode)
}
