package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// RepoMetricsMeterName is the name used for the repository metrics meter
	RepoMetricsMeterName = "github.com/kanade-dev/extrepo/repos"

	// RefreshMetricsMeterName is the name used for the refresh metrics meter
	RefreshMetricsMeterName = "github.com/kanade-dev/extrepo/refresh"

	// HTTPMetricsMeterName is the name used for the HTTP metrics meter
	HTTPMetricsMeterName = "github.com/kanade-dev/extrepo/http"
)

// RepoMetrics holds instruments describing the stored repositories.
type RepoMetrics struct {
	reposTotal metric.Int64Gauge
}

// NewRepoMetrics returns nil (no-op metrics) when provider is nil.
func NewRepoMetrics(provider metric.MeterProvider) (*RepoMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	reposTotal, err := provider.Meter(RepoMetricsMeterName).Int64Gauge(
		"extrepo_repos_total",
		metric.WithDescription("Number of stored extension repositories"),
		metric.WithUnit("{repo}"),
	)
	if err != nil {
		return nil, err
	}

	return &RepoMetrics{reposTotal: reposTotal}, nil
}

// RecordReposTotal records the current number of stored repositories
func (m *RepoMetrics) RecordReposTotal(ctx context.Context, count int64) {
	if m == nil || m.reposTotal == nil {
		return
	}
	m.reposTotal.Record(ctx, count)
}

// RefreshMetrics holds instruments for repository refresh and index fetches.
type RefreshMetrics struct {
	refreshDuration metric.Float64Histogram
	indexFetches    metric.Int64Counter
}

// NewRefreshMetrics returns nil (no-op metrics) when provider is nil.
func NewRefreshMetrics(provider metric.MeterProvider) (*RefreshMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RefreshMetricsMeterName)

	refreshDuration, err := meter.Float64Histogram(
		"extrepo_refresh_duration_seconds",
		metric.WithDescription("Duration of repository refresh passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	indexFetches, err := meter.Int64Counter(
		"extrepo_index_fetches_total",
		metric.WithDescription("Number of extension index fetches by result"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	return &RefreshMetrics{
		refreshDuration: refreshDuration,
		indexFetches:    indexFetches,
	}, nil
}

// RecordRefresh records the duration of a refresh pass.
func (m *RefreshMetrics) RecordRefresh(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.refreshDuration == nil {
		return
	}
	m.refreshDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordIndexFetch counts one index fetch against a repository.
func (m *RefreshMetrics) RecordIndexFetch(ctx context.Context, baseURL string, success bool) {
	if m == nil || m.indexFetches == nil {
		return
	}
	m.indexFetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repo", baseURL),
		attribute.Bool("success", success),
	))
}

// HTTPMetrics holds the instruments recorded by MetricsMiddleware.
type HTTPMetrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewHTTPMetrics returns nil (no-op metrics) when provider is nil.
func NewHTTPMetrics(provider metric.MeterProvider) (*HTTPMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(HTTPMetricsMeterName)

	requestDuration, err := meter.Float64Histogram(
		"extrepo_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	requestsTotal, err := meter.Int64Counter(
		"extrepo_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"extrepo_http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestDuration: requestDuration,
		requestsTotal:   requestsTotal,
		activeRequests:  activeRequests,
	}, nil
}

// MetricsMiddleware records request count, latency and in-flight requests
// keyed by chi route pattern. A nil receiver yields a pass-through middleware.
func (m *HTTPMetrics) MetricsMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		m.activeRequests.Add(ctx, 1)
		defer m.activeRequests.Add(ctx, -1)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", routePattern(r)),
			attribute.String("http.response.status_code", strconv.Itoa(ww.Status())),
		)
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		m.requestsTotal.Add(ctx, 1, attrs)
	})
}

// routePattern returns the matched chi route, or "unknown_route" to keep
// label cardinality bounded.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "unknown_route"
}
