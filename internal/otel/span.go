// Package otel provides span helpers shared by the service and storage layers.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used across spans.
const (
	AttrRepoBaseURL     = attribute.Key("repo.base_url")
	AttrRepoFingerprint = attribute.Key("repo.fingerprint")
	AttrStorageType     = attribute.Key("storage.type")
	AttrExtensionPkg    = attribute.Key("extension.pkg")
	AttrResultCount     = attribute.Key("result.count")
	AttrOutcome         = attribute.Key("outcome")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when
// tracer is nil.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status description stays generic;
// the error itself is attached as a span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
