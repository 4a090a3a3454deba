package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records rake metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTrack records a track call, whether its event was dropped, and its duration.
	RecordTrack(ctx context.Context, token string, dropped bool, duration time.Duration)

	// RecordOverlayWrite records a super properties write to the store.
	RecordOverlayWrite(ctx context.Context, token, op string, sizeBytes int64, err error)

	// RecordDelivery records a batch send attempt.
	RecordDelivery(ctx context.Context, endpoint string, events int, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	events          metric.Int64Counter
	dropped         metric.Int64Counter
	trackLatency    metric.Float64Histogram
	overlayWrites   metric.Int64Counter
	overlaySize     metric.Int64Histogram
	batches         metric.Int64Counter
	deliveredEvents metric.Int64Counter
	deliveryErrors  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("rake")

	events, err := meter.Int64Counter("rake.track.events",
		metric.WithDescription("Number of track calls"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("rake.track.dropped",
		metric.WithDescription("Number of events dropped during composition or hand-off"),
	)
	if err != nil {
		return nil, err
	}

	trackLatency, err := meter.Float64Histogram("rake.track.latency_ms",
		metric.WithDescription("Track latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	overlayWrites, err := meter.Int64Counter("rake.super_properties.writes",
		metric.WithDescription("Number of super properties writes"),
	)
	if err != nil {
		return nil, err
	}

	overlaySize, err := meter.Int64Histogram("rake.super_properties.size_bytes",
		metric.WithDescription("Serialized super properties size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	batches, err := meter.Int64Counter("rake.delivery.batches",
		metric.WithDescription("Number of batch send attempts"),
	)
	if err != nil {
		return nil, err
	}

	deliveredEvents, err := meter.Int64Counter("rake.delivery.events",
		metric.WithDescription("Number of events delivered"),
	)
	if err != nil {
		return nil, err
	}

	deliveryErrors, err := meter.Int64Counter("rake.delivery.errors",
		metric.WithDescription("Number of failed batch sends"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		events:          events,
		dropped:         dropped,
		trackLatency:    trackLatency,
		overlayWrites:   overlayWrites,
		overlaySize:     overlaySize,
		batches:         batches,
		deliveredEvents: deliveredEvents,
		deliveryErrors:  deliveryErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordTrack records a track call.
func (m *otelMetrics) RecordTrack(ctx context.Context, token string, dropped bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("token", token),
	}

	m.events.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.trackLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))

	if dropped {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordOverlayWrite records a super properties write.
func (m *otelMetrics) RecordOverlayWrite(ctx context.Context, token, op string, sizeBytes int64, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("token", token),
		attribute.String("operation", op),
		attribute.Bool("success", err == nil),
	}
	m.overlayWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err == nil {
		m.overlaySize.Record(ctx, sizeBytes, metric.WithAttributes(attrs[:2]...))
	}
}

// RecordDelivery records a batch send attempt.
func (m *otelMetrics) RecordDelivery(ctx context.Context, endpoint string, events int, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
	}
	m.batches.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.deliveryErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		return
	}
	m.deliveredEvents.Add(ctx, int64(events), metric.WithAttributes(attrs...))
}
