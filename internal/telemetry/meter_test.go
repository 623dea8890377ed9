package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        []MeterProviderOption
		expectNoOp  bool
		wantHandler bool
	}{
		{
			name:       "returns no-op provider when no config provided",
			expectNoOp: true,
		},
		{
			name:       "returns no-op provider when metrics disabled",
			opts:       []MeterProviderOption{WithMetricsConfig(&MetricsConfig{Enabled: false})},
			expectNoOp: true,
		},
		{
			name: "returns SDK provider with OTLP exporter",
			opts: []MeterProviderOption{
				WithMetricsConfig(&MetricsConfig{Enabled: true}),
				WithMeterInsecure(true),
			},
		},
		{
			name: "returns SDK provider and scrape handler with Prometheus exporter",
			opts: []MeterProviderOption{
				WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: MetricsExporterPrometheus}),
			},
			wantHandler: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			mp, handler, err := NewMeterProvider(ctx, tt.opts...)
			require.NoError(t, err)
			require.NotNil(t, mp)
			assert.Equal(t, tt.wantHandler, handler != nil)

			if tt.expectNoOp {
				_, ok := mp.(noop.MeterProvider)
				assert.True(t, ok, "expected no-op meter provider")
				return
			}

			sdkMP, ok := mp.(*sdkmetric.MeterProvider)
			require.True(t, ok, "expected SDK meter provider")
			// no collector is running, so the final flush may fail
			t.Cleanup(func() { _ = sdkMP.Shutdown(ctx) })
		})
	}
}

func TestPrometheusHandlerServesRecordedMetrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mp, handler, err := NewMeterProvider(ctx,
		WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: MetricsExporterPrometheus}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.(*sdkmetric.MeterProvider).Shutdown(ctx) })

	metrics, err := NewRepoMetrics(mp)
	require.NoError(t, err)
	metrics.RecordReposTotal(ctx, 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "extrepo_repos_total")
}
