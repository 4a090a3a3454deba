package rake

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/observability"
)

// Client records events for one token. Obtain clients from a Registry;
// there is exactly one Client per (scope, token) pair.
//
// No Client method returns an error or panics into the caller: failures
// are logged and the affected event or property is dropped.
type Client struct {
	token     string
	scope     string
	devServer bool

	overlay *overlay
	queue   delivery.Queue
	env     env.Provider

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	now      func() time.Time
	baseLoc  *time.Location
	localLoc *time.Location
}

// Token returns the token the client tracks for.
func (c *Client) Token() string {
	return c.token
}

// Scope returns the application scope the client was created in.
func (c *Client) Scope() string {
	return c.scope
}

// IsDevServer reports whether the client was bound to the dev endpoint.
func (c *Client) IsDevServer() bool {
	return c.devServer
}

// Track composes an event from props and hands it to the delivery queue.
func (c *Client) Track(props map[string]any) {
	c.TrackContext(context.Background(), props)
}

// TrackContext is Track with a context for tracing. The context does not
// bound delivery, which happens asynchronously.
func (c *Client) TrackContext(ctx context.Context, props map[string]any) {
	start := time.Now()
	ctx, span := c.spans.StartTrackSpan(ctx, c.token)

	doc, err := c.Compose(props)
	if err == nil {
		if doc.HasSchema() {
			c.spans.AddSpanEvent(ctx, "rake.schema_applied", attribute.String("rake.schema_id", doc.SchemaID))
		}
		err = c.queue.Enqueue(doc)
	}

	c.spans.EndSpanWithError(span, err)
	c.metrics.RecordTrack(ctx, c.token, err != nil, time.Since(start))

	if err != nil {
		observability.LogTrackDropped(c.logger, err)
		return
	}
	observability.LogTrack(debugLogger(c.logger), len(doc.Properties), doc.SchemaID,
		float64(time.Since(start).Microseconds())/1000)
}

// RegisterSuperProperties adds props to the super properties, replacing
// existing values, and persists them.
func (c *Client) RegisterSuperProperties(props map[string]any) {
	c.logDebug("registerSuperProperties")
	if err := c.overlay.register(props, false); err != nil {
		observability.LogOverlayError(c.logger, "register", err)
	}
}

// RegisterSuperPropertiesOnce adds the keys of props that are not yet
// registered and persists the super properties.
func (c *Client) RegisterSuperPropertiesOnce(props map[string]any) {
	c.logDebug("registerSuperPropertiesOnce")
	if err := c.overlay.register(props, true); err != nil {
		observability.LogOverlayError(c.logger, "register_once", err)
	}
}

// UnregisterSuperProperty removes one super property and persists the rest.
func (c *Client) UnregisterSuperProperty(key string) {
	if err := c.overlay.unregister(key); err != nil {
		observability.LogOverlayError(c.logger, "unregister", err)
	}
}

// ClearSuperProperties removes every super property.
func (c *Client) ClearSuperProperties() {
	c.logDebug("clearSuperProperties")
	if err := c.overlay.clear(); err != nil {
		observability.LogOverlayError(c.logger, "clear", err)
	}
}

// ClearPreferences deletes everything stored for the token and reloads the
// (now empty) super properties. Events already queued are unaffected.
func (c *Client) ClearPreferences() {
	if err := c.overlay.reset(); err != nil {
		observability.LogOverlayError(c.logger, "clear_preferences", err)
	}
}

// SuperProperties returns a deep copy of the current super properties.
func (c *Client) SuperProperties() map[string]any {
	snap := c.overlay.snapshot()
	for k, v := range snap {
		snap[k] = deepCopy(v)
	}
	return snap
}

// logDebug emits a debug record when debug mode is on.
func (c *Client) logDebug(msg string, args ...any) {
	if l := debugLogger(c.logger); l != nil {
		l.Debug(msg, args...)
	}
}

// Flush asks the delivery queue to send queued events now.
func (c *Client) Flush() {
	observability.LogFlush(debugLogger(c.logger))
	c.queue.Flush()
}

// SetFlushInterval changes how often the delivery queue sends events.
func (c *Client) SetFlushInterval(d time.Duration) {
	c.queue.SetFlushInterval(d)
}

// SetEndpoint points the delivery queue at a different collector.
func (c *Client) SetEndpoint(url string) {
	c.queue.SetEndpoint(url)
}
