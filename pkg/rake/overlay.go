package rake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/randalmurphal/rake/pkg/rake/observability"
	"github.com/randalmurphal/rake/pkg/rake/store"
)

// overlay is a client's super properties: a JSON object merged into every
// event, written through to the store on each mutation.
//
// Values are held in their JSON-decoded form (numbers are float64, objects
// are map[string]any) so the in-memory state always equals what a reload
// from the store would produce. Values are replaced, never mutated in
// place, which makes a shallow copy of props a consistent snapshot.
// Anything handed outside the package gets a deep copy.
type overlay struct {
	mu    sync.RWMutex
	props map[string]any

	token     string
	namespace string
	store     store.Store
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
}

func newOverlay(token string, s store.Store, logger *slog.Logger, metrics observability.MetricsRecorder) *overlay {
	o := &overlay{
		props:     map[string]any{},
		token:     token,
		namespace: store.Namespace(token),
		store:     s,
		logger:    logger,
		metrics:   metrics,
	}
	o.mu.Lock()
	o.loadLocked()
	o.mu.Unlock()
	return o
}

// loadLocked replaces props with the stored document. A missing document
// yields an empty overlay. A corrupt one is replaced by an empty overlay
// that is persisted immediately.
func (o *overlay) loadLocked() {
	payload, err := o.store.Get(o.namespace, store.KeySuperProperties)
	switch {
	case errors.Is(err, store.ErrNotFound):
		payload = "{}"
	case err != nil:
		observability.LogOverlayError(o.logger, "load", err)
		o.props = map[string]any{}
		return
	}

	observability.LogOverlayLoaded(debugLogger(o.logger), payload)

	var props map[string]any
	if err := json.Unmarshal([]byte(payload), &props); err != nil || props == nil {
		if err == nil {
			err = errors.New("document is not an object")
		}
		observability.LogOverlayReset(o.logger, fmt.Errorf("%w: %v", ErrCorruptSuperProperties, err))
		o.props = map[string]any{}
		if err := o.persistLocked("reset"); err != nil {
			observability.LogOverlayError(o.logger, "reset", err)
		}
		return
	}
	o.props = props
}

// persistLocked writes the whole overlay to the store.
func (o *overlay) persistLocked(op string) error {
	data, err := json.Marshal(o.props)
	if err != nil {
		return fmt.Errorf("encode super properties: %w", err)
	}

	payload := string(data)
	observability.LogOverlayStored(debugLogger(o.logger), payload)

	err = o.store.Put(o.namespace, store.KeySuperProperties, payload)
	o.metrics.RecordOverlayWrite(context.Background(), o.token, op, int64(len(data)), err)
	if err != nil {
		return fmt.Errorf("store super properties: %w", err)
	}
	return nil
}

// register merges props into the overlay and persists it. When once is
// true, keys already present are left untouched. Values that cannot be
// encoded are skipped and logged.
func (o *overlay) register(props map[string]any, once bool) error {
	op := "register"
	if once {
		op = "register_once"
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for key, value := range props {
		if once {
			if _, exists := o.props[key]; exists {
				continue
			}
		}
		normalized, err := normalize(value)
		if err != nil {
			observability.LogPropertySkipped(o.logger, op, key, &PropertyError{Key: key, Err: err})
			continue
		}
		o.props[key] = normalized
	}

	return o.persistLocked(op)
}

// unregister removes key, if present, and persists the overlay.
func (o *overlay) unregister(key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.props, key)
	return o.persistLocked("unregister")
}

// clear empties the overlay and persists the empty document.
func (o *overlay) clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.props = map[string]any{}
	return o.persistLocked("clear")
}

// reset drops everything stored for the token and reloads.
func (o *overlay) reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.ClearAll(o.namespace); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	o.loadLocked()
	return nil
}

// snapshot returns a shallow copy safe to read without the lock.
func (o *overlay) snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]any, len(o.props))
	for k, v := range o.props {
		out[k] = v
	}
	return out
}

// normalize converts v to its JSON-decoded form, failing for values that
// cannot be encoded (channels, functions, NaN, cyclic structures).
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// deepCopy copies the JSON-decoded value v.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
