package storage

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/db"
)

// FactoryOption configures NewStore
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	tracer trace.Tracer
}

// WithStoreTracer enables query spans for the database backend
func WithStoreTracer(tracer trace.Tracer) FactoryOption {
	return func(c *factoryConfig) {
		c.tracer = tracer
	}
}

// NewStore creates the Store selected by the configuration. A database
// section selects PostgreSQL; otherwise repositories are kept on disk.
func NewStore(ctx context.Context, cfg *config.Config, opts ...FactoryOption) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	fc := &factoryConfig{}
	for _, opt := range opts {
		opt(fc)
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		slog.InfoContext(ctx, "Creating database-backed repository store")
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool, WithTracer(fc.tracer)), nil
	case config.StorageTypeFile:
		slog.InfoContext(ctx, "Creating file-backed repository store", "dir", cfg.GetFileStorageBaseDir())
		return NewFileStore(cfg.GetFileStorageBaseDir())
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
