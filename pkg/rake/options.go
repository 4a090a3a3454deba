package rake

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/observability"
	"github.com/randalmurphal/rake/pkg/rake/store"
)

// BaseLocation is the reference time zone of the base_time property (KST, UTC+9, no DST).
var BaseLocation = time.FixedZone("KST", 9*60*60)

// QueueFactory creates the delivery queue bound to a new client.
type QueueFactory func(scope, token string) delivery.Queue

// registryConfig holds the collaborators shared by every client of a Registry.
type registryConfig struct {
	store        store.Store
	queueFactory QueueFactory
	env          env.Provider
	logger       *slog.Logger
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	now          func() time.Time
	baseLoc      *time.Location
	localLoc     *time.Location
	liveEndpoint string
	devEndpoint  string
}

// defaultRegistryConfig returns the default configuration.
// The store and queue defaults are filled in by NewRegistry because the
// registry owns (and must close) them.
func defaultRegistryConfig() registryConfig {
	return registryConfig{
		env:          env.Empty,
		logger:       slog.Default(),
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
		now:          time.Now,
		baseLoc:      BaseLocation,
		localLoc:     time.Local,
		liveEndpoint: delivery.LiveEndpoint,
		devEndpoint:  delivery.DevEndpoint,
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithStore sets the store that persists super properties.
// Default: an in-memory store owned by the registry.
func WithStore(s store.Store) Option {
	return func(c *registryConfig) {
		if s != nil {
			c.store = s
		}
	}
}

// WithQueue binds every client to the same delivery queue.
//
// Example:
//
//	q := delivery.NewBatchQueue(delivery.NewHTTPSender(nil), delivery.DefaultConfig)
//	reg := rake.NewRegistry(rake.WithQueue(q))
func WithQueue(q delivery.Queue) Option {
	return func(c *registryConfig) {
		if q != nil {
			c.queueFactory = func(string, string) delivery.Queue { return q }
		}
	}
}

// WithQueueFactory creates a queue per client.
// Default: one BatchQueue with an HTTPSender per client, owned by the registry.
func WithQueueFactory(f QueueFactory) Option {
	return func(c *registryConfig) {
		if f != nil {
			c.queueFactory = f
		}
	}
}

// WithEnvironment sets the environment snapshot provider.
// Default: env.Empty
func WithEnvironment(p env.Provider) Option {
	return func(c *registryConfig) {
		if p != nil {
			c.env = p
		}
	}
}

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *registryConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder. Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *registryConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager. Default: observability.NoopSpanManager{}
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *registryConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithClock overrides the wall clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *registryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocalLocation sets the zone of the local_time property. Default: time.Local
func WithLocalLocation(loc *time.Location) Option {
	return func(c *registryConfig) {
		if loc != nil {
			c.localLoc = loc
		}
	}
}

// WithEndpoints overrides the collector URLs chosen by the dev-server flag.
// Empty arguments keep the defaults.
func WithEndpoints(live, dev string) Option {
	return func(c *registryConfig) {
		if live != "" {
			c.liveEndpoint = live
		}
		if dev != "" {
			c.devEndpoint = dev
		}
	}
}
