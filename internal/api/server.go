// Package api provides the REST API server for extension repositories.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/kanade-dev/extrepo/internal/api/v1"
	"github.com/kanade-dev/extrepo/internal/auth"
	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/service"
)

// V1Prefix is the mount point of the versioned API
const V1Prefix = "/v1"

// ProtectedResourcePath serves the OAuth protected resource metadata
const ProtectedResourcePath = auth.ProtectedResourcePath

// StreamingPaths lists the long-lived endpoints that must bypass request timeouts
var StreamingPaths = []string{V1Prefix + v1.WatchPath}

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	wellKnown      http.Handler
	routerOptions  []v1.RouterOption
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithProtectedResourceHandler serves h at ProtectedResourcePath
func WithProtectedResourceHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.wellKnown = h
	}
}

// WithExtensionFilter applies base to every extension listing
func WithExtensionFilter(base *config.FilterConfig) ServerOption {
	return func(cfg *serverConfig) {
		cfg.routerOptions = append(cfg.routerOptions, v1.WithExtensionFilter(base))
	}
}

// WithStatusReader exposes the background refresh status under /v1/repos/status
func WithStatusReader(reader v1.StatusReader) ServerOption {
	return func(cfg *serverConfig) {
		cfg.routerOptions = append(cfg.routerOptions, v1.WithStatusReader(reader))
	}
}

// NewServer creates and configures the HTTP router with the given service and options
func NewServer(svc service.RepoService, finder v1.ExtensionFinder, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Mount("/", v1.HealthRouter(svc))
	r.Mount(V1Prefix, v1.Router(svc, finder, cfg.routerOptions...))

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}
	if cfg.wellKnown != nil {
		r.Method(http.MethodGet, ProtectedResourcePath, cfg.wellKnown)
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.DebugContext(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// SkipPaths applies mw to every request except those for the given paths
func SkipPaths(mw func(http.Handler) http.Handler, paths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
