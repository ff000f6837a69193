package main

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Data["app"] = h.appName
	return nil
}

func newLogger(out io.Writer, cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	levelStr := strings.ToLower(strings.TrimSpace(cfg.Level))
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		logger.Warnf("invalid log level %q, defaulting to info", cfg.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.AddHook(&appNameHook{appName: "hubctl"})
	return logger
}
