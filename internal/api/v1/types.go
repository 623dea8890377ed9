// Package v1 provides the REST API handlers for extension repositories and
// the extensions they publish.
package v1

import (
	"context"

	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/repo"
)

//go:generate mockgen -destination=mocks/mock_finder.go -package=mocks -source=types.go ExtensionFinder

// ExtensionFinder aggregates the extensions published by stored repositories
type ExtensionFinder interface {
	FindExtensions(ctx context.Context) ([]extensions.Available, error)
	CheckForUpdates(ctx context.Context, installed []extensions.Installed, prefetched []extensions.Available) ([]extensions.Available, error)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string `json:"status" example:"ready"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateRepoRequest is the body of POST /v1/repos
type CreateRepoRequest struct {
	URL string `json:"url" example:"https://example.com/repo/index.min.json"`
}

// RenameRepoRequest is the body of POST /v1/repos/rename
type RenameRepoRequest struct {
	BaseURL string `json:"baseUrl"`
	URL     string `json:"url"`
}

// CountResponse is the body of GET /v1/repos/count
type CountResponse struct {
	Count int `json:"count"`
}

// DuplicateFingerprintResponse reports the stored repository already using
// the signing key of the one being added
type DuplicateFingerprintResponse struct {
	Error    string             `json:"error"`
	Existing repo.ExtensionRepo `json:"existing"`
	New      repo.ExtensionRepo `json:"new"`
}

// ExtensionListResponse is the body of the extension listing endpoints
type ExtensionListResponse struct {
	Extensions []extensions.Available `json:"extensions"`
	Count      int                    `json:"count"`
}
