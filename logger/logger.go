// Package logger builds the process slog logger from configuration.
package logger

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nathoo/sagacore/config"
)

// Rotation limits for file logging.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

// Setup builds a logger writing to cfg.LogFile, rotated, or to fallback
// when no file is configured, and installs it as the slog default. The
// returned closer releases the log file.
func Setup(cfg *config.Config, fallback io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = fallback
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out, closer = lj, lj
	}

	logger := slog.New(handler(cfg, out))
	slog.SetDefault(logger)
	return logger, closer
}

func handler(cfg *config.Config, out io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
