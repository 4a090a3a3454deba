package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordTrack(ctx, "tok", true, time.Second)
		m.RecordOverlayWrite(ctx, "tok", "clear", 2, errors.New("x"))
		m.RecordDelivery(ctx, "http://x", 3, nil)
	})
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := sm.StartTrackSpan(ctx, "tok")
	assert.Equal(t, ctx, newCtx)
	assert.False(t, span.IsRecording())

	newCtx, span = sm.StartFlushSpan(ctx, "http://x", 1)
	assert.Equal(t, ctx, newCtx)
	assert.False(t, span.SpanContext().IsValid())

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(ctx, "evt", attribute.String("k", "v"))
		sm.EndSpanWithError(span, errors.New("x"))
	})
}
