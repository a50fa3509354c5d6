// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// SetupLogger installs the process-wide slog logger.
func SetupLogger(level, format string) {
	slog.SetDefault(NewLogger(os.Stdout, level, format))
}

// NewLogger builds a logger writing to w. format "json" selects the JSON
// handler; anything else gets colored text output.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &tint.Options{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	}
	return slog.New(tint.NewHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
