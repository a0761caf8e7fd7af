package testutil

import (
	"log/slog"
	"os"
)

// NewTestLogger creates a debug logger writing to stderr, shown with -v.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewNullLogger creates a logger that discards all output.
func NewNullLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
