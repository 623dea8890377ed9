package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/storage"
)

func strPtr(s string) *string { return &s }

func sampleRepo(base, fingerprint string) repo.ExtensionRepo {
	return repo.ExtensionRepo{
		BaseURL:               base,
		Name:                  "Repo " + base,
		ShortName:             strPtr("short"),
		Website:               "https://example.org",
		SigningKeyFingerprint: fingerprint,
	}
}

// runStoreContract exercises the behaviour every Store backend must share
//
//nolint:thelper // subtests should report their own lines
func runStoreContract(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		repos, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, repos)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		_, err = s.Get(ctx, "https://a.example")
		require.ErrorIs(t, err, repo.ErrRepoNotFound)
		_, err = s.GetByFingerprint(ctx, "FP")
		require.ErrorIs(t, err, repo.ErrRepoNotFound)
	})

	t.Run("insert and read back ordered by base URL", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://b.example", "FP-B")))
		require.NoError(t, s.Insert(ctx, sampleRepo("https://a.example", "FP-A")))

		repos, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, repos, 2)
		assert.Equal(t, "https://a.example", repos[0].BaseURL)
		assert.Equal(t, "https://b.example", repos[1].BaseURL)

		got, err := s.Get(ctx, "https://b.example")
		require.NoError(t, err)
		assert.Equal(t, sampleRepo("https://b.example", "FP-B"), *got)

		got, err = s.GetByFingerprint(ctx, "FP-A")
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", got.BaseURL)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("insert conflicts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://a.example", "FP-A")))

		err := s.Insert(ctx, sampleRepo("https://a.example", "FP-OTHER"))
		require.True(t, repo.IsSaveRepoError(err), "got %v", err)
		require.ErrorIs(t, err, storage.ErrDuplicateBaseURL)

		err = s.Insert(ctx, sampleRepo("https://b.example", "FP-A"))
		require.True(t, repo.IsSaveRepoError(err), "got %v", err)
		require.ErrorIs(t, err, storage.ErrDuplicateFingerprint)
	})

	t.Run("upsert overwrites by base URL", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://a.example", "NOFINGERPRINT-1")))

		updated := sampleRepo("https://a.example", "FP-A")
		updated.Name = "Renamed"
		updated.ShortName = nil
		require.NoError(t, s.Upsert(ctx, updated))

		got, err := s.Get(ctx, "https://a.example")
		require.NoError(t, err)
		assert.Equal(t, updated, *got)

		require.NoError(t, s.Upsert(ctx, sampleRepo("https://c.example", "FP-C")))
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("upsert rejects fingerprint owned by another repository", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://a.example", "FP-A")))

		err := s.Upsert(ctx, sampleRepo("https://b.example", "FP-A"))
		require.True(t, repo.IsSaveRepoError(err), "got %v", err)
	})

	t.Run("replace swaps the record holding the fingerprint", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://old.example", "FP-A")))
		require.NoError(t, s.Insert(ctx, sampleRepo("https://other.example", "FP-B")))

		require.NoError(t, s.Replace(ctx, sampleRepo("https://new.example", "FP-A")))

		_, err := s.Get(ctx, "https://old.example")
		require.ErrorIs(t, err, repo.ErrRepoNotFound)

		got, err := s.GetByFingerprint(ctx, "FP-A")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", got.BaseURL)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("replace without a matching fingerprint inserts", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Replace(ctx, sampleRepo("https://new.example", "FP-N")))

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sampleRepo("https://a.example", "FP-A")))

		require.NoError(t, s.Delete(ctx, "https://a.example"))
		require.NoError(t, s.Delete(ctx, "https://a.example"))
		require.NoError(t, s.Delete(ctx, "https://never.example"))

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
