package serviceutil

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// LogFatal logs an error that ends the process, the caller exits once
// its deferred cleanup has run.
func LogFatal(message string, err error) {
	slog.Error(message, "fatal", true, "err", err)
}
