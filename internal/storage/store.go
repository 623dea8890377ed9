// Package storage persists extension repositories. A Store is backed either by
// a JSON document on local disk or by PostgreSQL; Observable layers a live
// snapshot of the full set on top of either.
package storage

import (
	"context"
	"errors"

	"github.com/kanade-dev/extrepo/internal/repo"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

var (
	// ErrDuplicateBaseURL is wrapped in a SaveRepoError when an insert hits an existing base URL
	ErrDuplicateBaseURL = errors.New("base URL already exists")

	// ErrDuplicateFingerprint is wrapped in a SaveRepoError when a write hits a fingerprint owned by another repository
	ErrDuplicateFingerprint = errors.New("signing key fingerprint already exists")
)

// Store is the persistence contract for extension repositories.
// Writes that violate base URL or fingerprint uniqueness fail with a
// *repo.SaveRepoError.
type Store interface {
	// List returns every repository ordered by base URL
	List(ctx context.Context) ([]repo.ExtensionRepo, error)

	// Get returns repo.ErrRepoNotFound when baseURL is unknown
	Get(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error)

	// GetByFingerprint returns repo.ErrRepoNotFound when no repository uses fingerprint
	GetByFingerprint(ctx context.Context, fingerprint string) (*repo.ExtensionRepo, error)

	// Insert adds a new repository
	Insert(ctx context.Context, r repo.ExtensionRepo) error

	// Upsert inserts r or overwrites the record with the same base URL
	Upsert(ctx context.Context, r repo.ExtensionRepo) error

	// Replace atomically removes the record holding r's fingerprint, if any, and writes r
	Replace(ctx context.Context, r repo.ExtensionRepo) error

	// Delete removes the repository with baseURL. Deleting an unknown URL is not an error.
	Delete(ctx context.Context, baseURL string) error

	// Count returns the number of stored repositories
	Count(ctx context.Context) (int, error)

	// Close releases the backend's resources
	Close() error
}
