package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewStdoutHandler(os.Stdout)))
}

// NewStdoutHandler is the JSON handler every deployment writes to; the
// Postgres sink is layered on top of it with a MultiHandler.
func NewStdoutHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
