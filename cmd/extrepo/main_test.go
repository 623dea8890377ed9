package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{env: "", want: slog.LevelInfo},
		{env: "debug", want: slog.LevelDebug},
		{env: "WARN", want: slog.LevelWarn},
		{env: "error", want: slog.LevelError},
		{env: "bogus", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("EXTREPO_LOG_LEVEL", tt.env)
			t.Setenv("LOG_LEVEL", "")
			assert.Equal(t, tt.want, getLogLevel())
		})
	}
}

func TestGetLogLevel_FallsBackToUnprefixed(t *testing.T) {
	t.Setenv("EXTREPO_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, getLogLevel())
}

func TestTraceHandler_InjectsSpanContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.With("k", "v").InfoContext(ctx, "inside span")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
	assert.Equal(t, "v", record["k"])

	buf.Reset()
	logger.InfoContext(context.Background(), "outside span")
	var plain map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &plain))
	_, hasTrace := plain["trace_id"]
	assert.False(t, hasTrace)
}
