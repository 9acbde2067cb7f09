// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/kalambet/wellbuddy/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds a text logger writing to console and, when cfg.File is set,
// to a size-rotated log file. It installs the logger as the slog default
// and returns a closer for the file (a no-op closer when there is none).
func Setup(cfg config.LogConfig, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		writers = append(writers, lj)
		closer = lj
	}

	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	slog.SetDefault(slog.New(h))
	return closer
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
