// Package app provides application lifecycle management for the extrepo server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kanade-dev/extrepo/internal/config"
)

// ExtRepoApp encapsulates all components needed to run the API server.
// It provides lifecycle management and graceful shutdown capabilities.
type ExtRepoApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the refresh coordinator in the background and serves HTTP.
// It blocks until the HTTP server stops or encounters an error.
func (app *ExtRepoApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.Serve(listener)
}

// Serve is Start on an existing listener
func (app *ExtRepoApp) Serve(listener net.Listener) error {
	go func() {
		if err := app.components.RefreshCoordinator.Start(app.ctx); err != nil {
			slog.Error("Refresh coordinator failed", "error", err)
		}
	}()

	slog.Info("Server listening", "address", listener.Addr().String())
	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout.
// It stops the refresh coordinator, shuts down the HTTP server and closes the store.
func (app *ExtRepoApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.RefreshCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop refresh coordinator", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := app.httpServer.Shutdown(shutdownCtx)

	// also closes the store
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *ExtRepoApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *ExtRepoApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired application components
func (app *ExtRepoApp) Components() *AppComponents {
	return app.components
}
