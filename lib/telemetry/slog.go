package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default logger, everything goes to stderr so that
// stdout stays free for command output.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
