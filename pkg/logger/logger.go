package logger

import (
	"os"
	"strings"
	"time"

	"github.com/greenmart/greenmart-backend/pkg/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger and returns it so it can be injected.
func Setup(cfg config.LogConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	default:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	return log
}
