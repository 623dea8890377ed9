package v1

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/filtering"
	"github.com/kanade-dev/extrepo/internal/service"
	"github.com/kanade-dev/extrepo/internal/status"
)

// WatchPath is the streaming endpoint, relative to the v1 mount point
const WatchPath = "/repos/watch"

// StatusReader returns the state of the background refresh
type StatusReader interface {
	LoadStatus(ctx context.Context) (*status.RefreshStatus, error)
}

// Routes holds the dependencies of the v1 handlers
type Routes struct {
	service service.RepoService
	finder  ExtensionFinder
	status  StatusReader

	filter     filtering.FilterService
	baseFilter *config.FilterConfig
}

// RouterOption configures optional v1 endpoints
type RouterOption func(*Routes)

// WithStatusReader serves the background refresh status at /repos/status
func WithStatusReader(reader StatusReader) RouterOption {
	return func(r *Routes) {
		r.status = reader
	}
}

// WithExtensionFilter applies base to every extension listing
func WithExtensionFilter(base *config.FilterConfig) RouterOption {
	return func(r *Routes) {
		r.baseFilter = base
	}
}

// NewRoutes creates a new Routes instance
func NewRoutes(svc service.RepoService, finder ExtensionFinder, opts ...RouterOption) *Routes {
	routes := &Routes{
		service: svc,
		finder:  finder,
		filter:  filtering.NewDefaultFilterService(),
	}
	for _, opt := range opts {
		opt(routes)
	}
	return routes
}

// Router creates the v1 router
func Router(svc service.RepoService, finder ExtensionFinder, opts ...RouterOption) http.Handler {
	routes := NewRoutes(svc, finder, opts...)

	r := chi.NewRouter()

	r.Get("/repos", routes.listRepos)
	r.Post("/repos", routes.createRepo)
	r.Put("/repos", routes.replaceRepo)
	r.Delete("/repos", routes.deleteRepo)
	r.Get("/repos/count", routes.countRepos)
	r.Get("/repos/detail", routes.getRepo)
	r.Get(WatchPath, routes.watchRepos)
	r.Post("/repos/rename", routes.renameRepo)
	r.Post("/repos/refresh", routes.refreshRepos)
	if routes.status != nil {
		r.Get("/repos/status", routes.refreshStatus)
	}

	r.Get("/extensions", routes.listExtensions)
	r.Post("/extensions/updates", routes.checkUpdates)

	return r
}
