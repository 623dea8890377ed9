package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repoMetrics, err := NewRepoMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, repoMetrics)
	repoMetrics.RecordReposTotal(ctx, 1)

	refreshMetrics, err := NewRefreshMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, refreshMetrics)
	refreshMetrics.RecordRefresh(ctx, time.Second, true)
	refreshMetrics.RecordIndexFetch(ctx, "https://example.org", false)

	httpMetrics, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, httpMetrics.MetricsMiddleware(next))
}

func TestRefreshMetricsRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewRefreshMetrics(mp)
	require.NoError(t, err)

	m.RecordRefresh(ctx, 2*time.Second, true)
	m.RecordIndexFetch(ctx, "https://example.org/repo", true)
	m.RecordIndexFetch(ctx, "https://example.org/repo", true)

	got := collect(t, reader)

	hist, ok := got["extrepo_refresh_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	sum, ok := got["extrepo_index_fetches_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewHTTPMetrics(mp)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.MetricsMiddleware)
	r.Get("/v1/repos", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/repos", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	got := collect(t, reader)
	sum, ok := got["extrepo_http_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)

	route, ok := sum.DataPoints[0].Attributes.Value("http.route")
	require.True(t, ok)
	assert.Equal(t, "/v1/repos", route.AsString())
	status, ok := sum.DataPoints[0].Attributes.Value("http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, "418", status.AsString())
}
