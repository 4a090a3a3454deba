package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartTrackSpan starts a span covering the composition of one event.
	StartTrackSpan(ctx context.Context, token string) (context.Context, trace.Span)

	// StartFlushSpan starts a span covering the delivery of one batch.
	StartFlushSpan(ctx context.Context, endpoint string, events int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The tracer is resolved from the global provider on each span, so
// otel.SetTracerProvider may be called before or after this function.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func tracer() trace.Tracer {
	return otel.Tracer("rake")
}

// StartTrackSpan starts a span for a track call.
func (m *otelSpanManager) StartTrackSpan(ctx context.Context, token string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "rake.track",
		trace.WithAttributes(
			attribute.String("rake.token", token),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartFlushSpan starts a span for a batch send.
func (m *otelSpanManager) StartFlushSpan(ctx context.Context, endpoint string, events int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "rake.flush",
		trace.WithAttributes(
			attribute.String("rake.endpoint", endpoint),
			attribute.Int("rake.batch.events", events),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
