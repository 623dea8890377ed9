package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/storage"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()
		_, err := storage.NewStore(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("file storage by default", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{FileStorage: &config.FileStorageConfig{BaseDir: t.TempDir()}}

		s, err := storage.NewStore(context.Background(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		_, ok := s.(*storage.FileStore)
		assert.True(t, ok)
	})

	t.Run("database storage fails without a password", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{Database: &config.DatabaseConfig{
			Host: "localhost", Port: 5432, User: "extrepo", Database: "extrepo",
		}}

		_, err := storage.NewStore(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no database password configured")
	})
}
