package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kanade-dev/extrepo/internal/api"
	"github.com/kanade-dev/extrepo/internal/auth"
	"github.com/kanade-dev/extrepo/internal/authz"
	"github.com/kanade-dev/extrepo/internal/config"
	"github.com/kanade-dev/extrepo/internal/extensions"
	"github.com/kanade-dev/extrepo/internal/httpclient"
	"github.com/kanade-dev/extrepo/internal/service"
	"github.com/kanade-dev/extrepo/internal/sources"
	"github.com/kanade-dev/extrepo/internal/status"
	"github.com/kanade-dev/extrepo/internal/storage"
	"github.com/kanade-dev/extrepo/internal/sync/coordinator"
	"github.com/kanade-dev/extrepo/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 60 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 90 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// ExtRepoAppOptions is a function that configures the app builder
type ExtRepoAppOptions func(*appConfig) error

// appConfig collects the builder inputs.
// Component overrides are primarily for testing.
type appConfig struct {
	config *config.Config

	store          storage.Store
	detailsFetcher sources.RepoDetailsFetcher
	indexFetcher   sources.IndexFetcher

	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...ExtRepoAppOptions) (*appConfig, error) {
	cfg := &appConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}

	return cfg, nil
}

// NewExtRepoApp wires the store, fetchers, services, refresh coordinator and
// HTTP server described by the configuration.
func NewExtRepoApp(ctx context.Context, opts ...ExtRepoAppOptions) (*ExtRepoApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.store == nil {
		cfg.store, err = storage.NewStore(ctx, cfg.config, storage.WithStoreTracer(cfg.tracer(storage.StoreTracerName)))
		if err != nil {
			return nil, fmt.Errorf("failed to create repository store: %w", err)
		}
	}

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			if err := cfg.store.Close(); err != nil {
				slog.Warn("Failed to close repository store", "error", err)
			}
		}
	}()

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	store := cfg.store
	cancelFunc := func() {
		cancel()
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close repository store", "error", err)
		}
	}

	return &ExtRepoApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("address is not a valid host:port: %w", err)
		}
		cfg.address = addr
		return nil
	}
}

// WithMiddlewares replaces the default HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout bounds non-streaming requests
func WithRequestTimeout(d time.Duration) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStore injects a repository store instead of building one from the configuration
func WithStore(s storage.Store) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.store = s
		return nil
	}
}

// WithRepoDetailsFetcher injects the repo.json fetcher (for testing)
func WithRepoDetailsFetcher(f sources.RepoDetailsFetcher) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.detailsFetcher = f
		return nil
	}
}

// WithIndexFetcher injects the index.min.json fetcher (for testing)
func WithIndexFetcher(f sources.IndexFetcher) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.indexFetcher = f
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider
func WithMeterProvider(mp metric.MeterProvider) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) ExtRepoAppOptions {
	return func(cfg *appConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

func (b *appConfig) tracer(name string) trace.Tracer {
	if b.tracerProvider == nil {
		return nil
	}
	return b.tracerProvider.Tracer(name)
}

// buildComponents builds the observable store, services and refresh coordinator
func buildComponents(ctx context.Context, b *appConfig) (*AppComponents, error) {
	slog.Info("Initializing service components")

	repoMetrics, err := telemetry.NewRepoMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository metrics: %w", err)
	}
	refreshMetrics, err := telemetry.NewRefreshMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh metrics: %w", err)
	}

	observable, err := storage.NewObservable(ctx, b.store, storage.WithRepoMetrics(repoMetrics))
	if err != nil {
		return nil, err
	}

	if b.detailsFetcher == nil || b.indexFetcher == nil {
		client := httpclient.NewDefaultClient(b.config.GetHTTPTimeout())
		if b.detailsFetcher == nil {
			b.detailsFetcher = sources.NewRepoDetailsFetcher(client)
		}
		if b.indexFetcher == nil {
			b.indexFetcher = sources.NewCachingIndexFetcher(
				sources.NewIndexFetcher(client), b.config.GetIndexCacheTTL())
		}
	}

	maxConcurrent := b.config.GetMaxConcurrentFetches()
	repoService := service.New(observable, b.detailsFetcher,
		service.WithTracer(b.tracer(service.ServiceTracerName)),
		service.WithMaxConcurrentRefreshes(maxConcurrent),
	)

	libMin, libMax := b.config.GetLibVersionRange()
	finder := extensions.NewFinder(repoService, b.indexFetcher,
		extensions.WithLibVersionRange(libMin, libMax),
		extensions.WithMaxConcurrentFetches(maxConcurrent),
		extensions.WithRefreshMetrics(refreshMetrics),
		extensions.WithFinderTracer(b.tracer(extensions.FinderTracerName)),
	)

	refreshStatus := status.NewFileStatusPersistence(b.config.GetFileStorageBaseDir())
	refreshCoordinator := coordinator.New(repoService, b.config,
		coordinator.WithRefreshMetrics(refreshMetrics),
		coordinator.WithStatusPersistence(refreshStatus))

	slog.Info("Service components initialized successfully",
		"storage", b.config.GetStorageType(),
		"repo_count", len(observable.Current()))

	return &AppComponents{
		RefreshCoordinator: refreshCoordinator,
		RepoService:        repoService,
		Finder:             finder,
		Store:              observable,
		RefreshStatus:      refreshStatus,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(ctx context.Context, b *appConfig, components *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			api.SkipPaths(middleware.Timeout(b.requestTimeout), api.StreamingPaths...),
			api.LoggingMiddleware,
		}
	}

	if b.meterProvider != nil {
		httpMetrics, err := telemetry.NewHTTPMetrics(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		b.middlewares = append([]func(http.Handler) http.Handler{httpMetrics.MetricsMiddleware}, b.middlewares...)
		slog.Info("HTTP metrics middleware enabled")
	}
	if b.tracerProvider != nil {
		b.middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, b.middlewares...)
		slog.Info("HTTP tracing middleware enabled")
	}

	authMw, wellKnown, err := auth.Middleware(ctx, b.config.Auth, auth.DefaultValidatorFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}
	authzMw := authz.NoopMiddleware
	if b.config.Auth.GetMode() == config.AuthModeOAuth {
		if authzMw, err = authz.NewMiddleware(b.config.Auth.Authz); err != nil {
			return nil, fmt.Errorf("failed to create authorization middleware: %w", err)
		}
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(b.middlewares...),
		api.WithMiddlewares(authMw, authzMw),
		api.WithStatusReader(components.RefreshStatus),
		api.WithExtensionFilter(b.config.GetExtensionFilter()),
	}
	if wellKnown != nil {
		serverOpts = append(serverOpts, api.WithProtectedResourceHandler(wellKnown))
	}
	if b.metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(b.metricsHandler))
	}
	router := api.NewServer(components.RepoService, components.Finder, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}
