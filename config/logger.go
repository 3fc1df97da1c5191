package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. An unknown level falls back to
// info.
func NewLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
