package config

import (
	"io"
	"log/slog"

	"mesh-painter/internal/painter"
	"mesh-painter/internal/selector"
)

// EnableLogging routes the library loggers to w as slog text.
func EnableLogging(w io.Writer, level slog.Level) {
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	selector.SetLogger(l)
	painter.SetLogger(l)
}
