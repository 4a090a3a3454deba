package rake

import (
	"context"
	"errors"
	"sync"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/observability"
	"github.com/randalmurphal/rake/pkg/rake/store"
)

// instanceKey identifies a client: one per token per application scope.
type instanceKey struct {
	scope string
	token string
}

// Registry hands out one Client per (scope, token) pair and shares its
// collaborators between them. Create one at application start and pass it
// to whatever needs to track events.
type Registry struct {
	cfg registryConfig

	mu        sync.Mutex
	instances map[instanceKey]*Client

	// Resources created by the registry rather than injected.
	ownedStore  store.Store
	ownedQueues []*delivery.BatchQueue
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		instances: make(map[instanceKey]*Client),
	}

	if cfg.store == nil {
		r.ownedStore = store.NewMemoryStore()
		cfg.store = r.ownedStore
	}
	if cfg.queueFactory == nil {
		cfg.queueFactory = r.defaultQueue
	}

	r.cfg = cfg
	return r
}

// defaultQueue creates a registry-owned BatchQueue posting over HTTP.
// Called with r.mu held.
func (r *Registry) defaultQueue(_, _ string) delivery.Queue {
	qcfg := delivery.DefaultConfig
	qcfg.Logger = r.cfg.logger
	qcfg.Metrics = r.cfg.metrics
	qcfg.Spans = r.cfg.spans

	q := delivery.NewBatchQueue(delivery.NewHTTPSender(nil), qcfg)
	r.ownedQueues = append(r.ownedQueues, q)
	return q
}

// GetInstance returns the client for token within scope, creating it on
// first use. A new client's queue is pointed at the dev or live endpoint
// according to devServer. Later calls for the same pair return the
// existing client and ignore devServer.
func (r *Registry) GetInstance(scope, token string, devServer bool) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := instanceKey{scope: scope, token: token}
	if c, ok := r.instances[key]; ok {
		return c
	}

	c := r.newClient(scope, token, devServer)
	r.instances[key] = c
	return c
}

// newClient builds a client and binds its queue. Called with r.mu held.
func (r *Registry) newClient(scope, token string, devServer bool) *Client {
	logger := observability.EnrichLogger(r.cfg.logger, token, scope)

	c := &Client{
		token:     token,
		scope:     scope,
		devServer: devServer,
		overlay:   newOverlay(token, r.cfg.store, logger, r.cfg.metrics),
		queue:     r.cfg.queueFactory(scope, token),
		env:       r.cfg.env,
		logger:    logger,
		metrics:   r.cfg.metrics,
		spans:     r.cfg.spans,
		now:       r.cfg.now,
		baseLoc:   r.cfg.baseLoc,
		localLoc:  r.cfg.localLoc,
	}

	endpoint := r.cfg.liveEndpoint
	if devServer {
		endpoint = r.cfg.devEndpoint
	}
	c.queue.SetEndpoint(endpoint)

	observability.LogInstanceCreated(logger, endpoint, devServer)
	return c
}

// Len returns the number of clients created so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Range calls fn for every client until fn returns false. It iterates over
// a snapshot, so fn may call GetInstance.
func (r *Registry) Range(fn func(*Client) bool) {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.instances))
	for _, c := range r.instances {
		clients = append(clients, c)
	}
	r.mu.Unlock()

	for _, c := range clients {
		if !fn(c) {
			return
		}
	}
}

// FlushAll asks every client's queue to send now.
func (r *Registry) FlushAll() {
	r.Range(func(c *Client) bool {
		c.Flush()
		return true
	})
}

// Close flushes and stops the queues and closes the store the registry
// created itself. Injected collaborators are left for the caller to close.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	queues := r.ownedQueues
	r.ownedQueues = nil
	owned := r.ownedStore
	r.ownedStore = nil
	r.mu.Unlock()

	var errs []error
	for _, q := range queues {
		if err := q.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if owned != nil {
		if err := owned.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
