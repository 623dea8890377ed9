// Package service implements the extension repository use cases: adding a
// repository from its index URL, keeping stored metadata fresh under the
// fingerprint pin, replacing, renaming and deleting repositories.
package service

import (
	"context"

	"github.com/kanade-dev/extrepo/internal/repo"
	"github.com/kanade-dev/extrepo/internal/storage"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go RepoService,RepoStore

// RepoService is the set of repository use cases exposed to the API and CLI
type RepoService interface {
	// Create adds the repository published at indexURL
	Create(ctx context.Context, indexURL string) CreateResult

	// Rename removes oldBaseURL and adds the repository published at newIndexURL.
	// Nothing is removed when newIndexURL is malformed.
	Rename(ctx context.Context, oldBaseURL, newIndexURL string) CreateResult

	// Refresh re-fetches the descriptor of one repository and updates it when trusted
	Refresh(ctx context.Context, r repo.ExtensionRepo)

	// RefreshAll refreshes every stored repository concurrently
	RefreshAll(ctx context.Context)

	// Replace swaps the repository holding r's fingerprint for r
	Replace(ctx context.Context, r repo.ExtensionRepo) error

	// Delete removes a repository; unknown base URLs are ignored
	Delete(ctx context.Context, baseURL string) error

	// Get returns repo.ErrRepoNotFound for unknown base URLs
	Get(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error)

	List(ctx context.Context) ([]repo.ExtensionRepo, error)
	Count(ctx context.Context) (int, error)

	// Subscribe yields the full repository list now and after every change
	Subscribe(ctx context.Context) <-chan []repo.ExtensionRepo

	// SubscribeCount yields the repository count now and after every change
	SubscribeCount(ctx context.Context) <-chan int

	// CheckReadiness reports whether the backing store can be read
	CheckReadiness(ctx context.Context) error
}

// RepoStore is the observable store the service writes through
type RepoStore interface {
	storage.Store
	Subscribe(ctx context.Context) <-chan []repo.ExtensionRepo
	SubscribeCount(ctx context.Context) <-chan int
}
