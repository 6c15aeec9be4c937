package main

import (
	"context"
	"time"

	"github.com/relaycfg/configserver/app/domain/invalidator"
	"github.com/relaycfg/configserver/app/infrastructure/cache"
	"github.com/relaycfg/configserver/app/infrastructure/releasebus"
	"github.com/relaycfg/configserver/app/interfaces/http"
	"github.com/relaycfg/configserver/app/utils/logger"
	"github.com/relaycfg/configserver/config/environment_variables"
)

const shutdownTimeout = 10 * time.Second

// Application is every long-running collaborator CreateApplication wires
// up: the HTTP server, the release-bus subscription that keeps every
// instance's local cache consistent with releases published elsewhere, and
// the mirror cache those two depend on.
type Application struct {
	HttpServer   *http.HttpServer
	Invalidator  *invalidator.Invalidator
	Bus          *releasebus.Bus
	Mirror       cache.CacheService
	ReleaseTopic string
}

// Start subscribes the invalidator to the release bus, then runs the HTTP
// server until SIGINT/SIGTERM arrives, at which point it drains in-flight
// requests and closes the mirror cache connection before returning.
func (application *Application) Start() {
	ctx, cancel := handleSignals(context.Background())
	defer cancel()

	if err := application.Invalidator.Start(ctx, application.Bus); err != nil {
		panic(err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.HttpServer.Run()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			panic(err)
		}
	case <-ctx.Done():
		logger.GetLogger().Info("shutdown signal received, draining in-flight requests")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := application.HttpServer.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().Warnf("http server shutdown: %v", err)
		}
		if err := application.Mirror.Close(); err != nil {
			logger.GetLogger().Warnf("mirror cache close: %v", err)
		}
	}
}

func init() {
	environment_variables.EnvironmentVariables.LoadFromEnv()
}

func main() {
	application, err := CreateApplication()
	if err != nil {
		logger.GetLogger().Fatalf("failed to start application: %v", err)
	}
	application.Start()
}
