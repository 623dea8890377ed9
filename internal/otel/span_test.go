package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	resultCtx, span := StartSpan(ctx, nil, "repos.Create")

	require.NotNil(t, resultCtx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_ValidTracer(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := StartSpan(context.Background(), tp.Tracer("test"), "repos.Create",
		trace.WithAttributes(AttrRepoBaseURL.String("https://example.org/repo")),
	)
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "repos.Create", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, AttrRepoBaseURL.String("https://example.org/repo"))
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvents int
	}{
		{name: "nil error leaves span untouched", err: nil, wantStatus: codes.Unset, wantEvents: 0},
		{name: "error marks span failed", err: errors.New("connection refused"), wantStatus: codes.Error, wantEvents: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			_, span := tp.Tracer("test").Start(context.Background(), "op")
			RecordError(span, tt.err)
			span.End()

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status.Code)
			assert.Len(t, spans[0].Events, tt.wantEvents)
			if tt.err != nil {
				assert.Equal(t, "operation failed", spans[0].Status.Description)
			}
		})
	}

	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })
}
