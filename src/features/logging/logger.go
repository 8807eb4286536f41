package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"cratekeeper/src/features/config"
	"github.com/charmbracelet/log"
)

func SetupLogger(cfg *config.Manager) *slog.Logger {
	var formatter log.Formatter
	switch cfg.Get().Logger.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	level := log.InfoLevel
	switch cfg.Get().Logger.Level {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "error":
		level = log.ErrorLevel
	}

	out := io.Writer(os.Stderr)
	if !cfg.Get().Logger.Enabled {
		out = io.Discard
	}

	handler := log.NewWithOptions(out, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "Cratekeeper",
		Formatter:       formatter,
		Level:           level,
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "time", time.Now().Format(time.RFC3339))
	return logger
}
