package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kanade-dev/extrepo/database"
	internalapp "github.com/kanade-dev/extrepo/internal/app"
	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/telemetry"
)

const defaultGracefulTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extension repository API server",
		Long: `Start the API server. Stored repositories are refreshed on the configured
sync interval and their extension indexes are served under /v1/extensions.

Storage defaults to a file under ./data. Add a database section to the
config file to keep repositories in PostgreSQL instead.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", ":8080", "Address to listen on")
	cmd.Flags().Bool("auto-migrate", false, "Apply pending database migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	address, err := cmd.Flags().GetString("address")
	if err != nil {
		return fmt.Errorf("failed to get address flag: %w", err)
	}
	autoMigrate, err := cmd.Flags().GetBool("auto-migrate")
	if err != nil {
		return fmt.Errorf("failed to get auto-migrate flag: %w", err)
	}

	if autoMigrate && cfg.GetStorageType() == config.StorageTypeDatabase {
		connString, err := cfg.Database.GetConnectionString()
		if err != nil {
			return fmt.Errorf("failed to get connection string: %w", err)
		}
		slog.Info("Applying database migrations")
		if err := database.MigrateUp(connString); err != nil {
			return err
		}
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting extension repository server",
		"address", address,
		"storage_type", cfg.GetStorageType(),
	)

	opts := []internalapp.ExtRepoAppOptions{
		internalapp.WithConfig(cfg),
		internalapp.WithAddress(address),
		internalapp.WithMeterProvider(tel.MeterProvider()),
		internalapp.WithTracerProvider(tel.TracerProvider()),
	}
	if h := tel.MetricsHandler(); h != nil {
		opts = append(opts, internalapp.WithMetricsHandler(h))
	}

	a, err := internalapp.NewExtRepoApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		slog.Info("Shutting down server", "signal", sig.String())
	case err, ok := <-errCh:
		if ok {
			_ = a.Stop(defaultGracefulTimeout)
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if err := a.Stop(defaultGracefulTimeout); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}
