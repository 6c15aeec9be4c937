package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// handleSignals returns a context that is cancelled when the process
// receives SIGINT or SIGTERM, so a k8s pod eviction or ^C triggers a
// graceful shutdown instead of dropping in-flight requests.
func handleSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
