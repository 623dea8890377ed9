package sources

import (
	"context"
	"errors"

	"github.com/kanade-dev/extrepo/internal/repo"
)

//go:generate mockgen -destination=mocks/mock_fetchers.go -package=mocks -source=types.go RepoDetailsFetcher,IndexFetcher

// ErrInvalidRepoDetails is returned when repo.json lacks a usable meta object
var ErrInvalidRepoDetails = errors.New("invalid repository descriptor")

// ErrInvalidIndex is returned when index.min.json is not a JSON array of entries
var ErrInvalidIndex = errors.New("invalid extension index")

// RepoDetailsFetcher retrieves the repository descriptor published at a base URL
type RepoDetailsFetcher interface {
	FetchRepoDetails(ctx context.Context, baseURL string) (*repo.ExtensionRepo, error)
}

// IndexFetcher retrieves the extension listing published at a base URL
type IndexFetcher interface {
	FetchIndex(ctx context.Context, baseURL string) ([]IndexEntry, error)
}

// IndexEntry is one element of index.min.json
type IndexEntry struct {
	Name    string        `json:"name"`
	Pkg     string        `json:"pkg"`
	APK     string        `json:"apk"`
	Lang    string        `json:"lang"`
	Code    int64         `json:"code"`
	Version string        `json:"version"`
	NSFW    int           `json:"nsfw"`
	Sources []IndexSource `json:"sources,omitempty"`
}

// IndexSource describes one content source bundled in an extension
type IndexSource struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	ID      int64  `json:"id,string"`
	BaseURL string `json:"baseUrl"`
}
