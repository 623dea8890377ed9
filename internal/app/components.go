package app

import (
	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/service"
	"github.com/kanade-dev/extrepo/internal/status"
	"github.com/kanade-dev/extrepo/internal/storage"
	"github.com/kanade-dev/extrepo/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// RefreshCoordinator keeps repository metadata fresh in the background
	RefreshCoordinator coordinator.Coordinator

	// RepoService provides the repository use cases
	RepoService service.RepoService

	// Finder aggregates extension indexes
	Finder *extensions.Finder

	// Store is the observable repository store
	Store *storage.Observable

	// RefreshStatus persists the state of the background refresh
	RefreshStatus status.StatusPersistence
}
