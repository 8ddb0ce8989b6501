package internal

import (
	"io"
	"log/slog"
	"os"
)

// SetupLogger installs a text slog handler on stderr as the default logger
// and returns it. Verbose enables debug-level output.
func SetupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// DiscardLogger returns a logger that drops everything, for quiet paths
// like the MCP stdio transport and tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
