package rake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/observability"
)

func TestClient_QueuePassThrough(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.Flush()
	c.SetFlushInterval(15 * time.Second)
	c.SetEndpoint("https://collector.example.test/track")

	assert.Equal(t, 1, h.queue.Flushes())
	assert.Equal(t, 15*time.Second, h.queue.FlushInterval())
	assert.Equal(t, []string{delivery.LiveEndpoint, "https://collector.example.test/track"}, h.queue.Endpoints())
}

func TestDebugMode(t *testing.T) {
	t.Cleanup(func() { SetDebug(false) })

	logger, buf := captureLogger()
	h := newHarness(t, WithLogger(logger))
	c := h.client()

	SetDebug(false)
	assert.False(t, Debug())
	c.RegisterSuperProperties(map[string]any{"plan": "free"})
	assert.NotContains(t, buf.String(), "registerSuperProperties")

	SetDebug(true)
	assert.True(t, Debug())
	c.RegisterSuperProperties(map[string]any{"plan": "pro"})
	c.Track(map[string]any{"event": "open"})

	out := buf.String()
	assert.Contains(t, out, "registerSuperProperties")
	assert.Contains(t, out, "event tracked")
}

func TestDebugMode_DoesNotChangeDocuments(t *testing.T) {
	t.Cleanup(func() { SetDebug(false) })

	h := newHarness(t)
	c := h.client()

	SetDebug(false)
	quiet, err := c.Compose(map[string]any{"event": "open"})
	require.NoError(t, err)

	SetDebug(true)
	loud, err := c.Compose(map[string]any{"event": "open"})
	require.NoError(t, err)

	assert.Equal(t, quiet, loud)
}

func TestClient_RecordsMetricsAndSpans(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	origMeter, origTracer := otel.GetMeterProvider(), otel.GetTracerProvider()
	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetMeterProvider(origMeter)
		otel.SetTracerProvider(origTracer)
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	h := newHarness(t,
		WithMetrics(observability.NewMetricsRecorder()),
		WithSpanManager(observability.NewSpanManager()),
	)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{"plan": "pro"})
	c.Track(map[string]any{"event": "open"})
	c.Track(map[string]any{
		"event":             "purchase",
		event.KeySchemaMeta: schemaMeta("purchase-v1", map[string]any{"event": 0}),
	})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["rake.track.events"])
	assert.True(t, names["rake.super_properties.writes"])

	ended := exporter.GetSpans()
	require.Len(t, ended, 2)
	assert.Equal(t, "rake.track", ended[0].Name)
	assert.Empty(t, ended[0].Events)
	require.Len(t, ended[1].Events, 1)
	assert.Equal(t, "rake.schema_applied", ended[1].Events[0].Name)
}
