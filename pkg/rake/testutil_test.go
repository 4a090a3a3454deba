package rake

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/delivery"
	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/store"
)

// Shared fixtures for client, overlay and registry tests.

const testToken = "tok-123"

// fixedNow is 2024-03-05 20:00:00.001 UTC, i.e. 2024-03-06 05:00:00.001 KST.
var fixedNow = time.Date(2024, 3, 5, 20, 0, 0, int(time.Millisecond), time.UTC)

// testEnv is the environment snapshot used unless a test overrides it.
var testEnv = env.Static{
	"os_name":     "linux",
	"app_version": "1.0.0",
}

// harness bundles a registry with the in-memory collaborators behind it.
type harness struct {
	reg   *Registry
	queue *delivery.MemoryQueue
	store *store.MemoryStore
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLogger returns a JSON logger at debug level and its output buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		queue: delivery.NewMemoryQueue(),
		store: store.NewMemoryStore(),
	}
	base := []Option{
		WithQueue(h.queue),
		WithStore(h.store),
		WithEnvironment(testEnv),
		WithLogger(discardLogger()),
		WithClock(func() time.Time { return fixedNow }),
		WithLocalLocation(time.UTC),
	}
	h.reg = NewRegistry(append(base, opts...)...)
	return h
}

func (h *harness) client() *Client {
	return h.reg.GetInstance("app", testToken, false)
}

// restart simulates a process restart: a fresh registry over the same store.
func (h *harness) restart(t *testing.T) *Client {
	t.Helper()
	reg := NewRegistry(
		WithQueue(h.queue),
		WithStore(h.store),
		WithEnvironment(testEnv),
		WithLogger(discardLogger()),
	)
	return reg.GetInstance("app", testToken, false)
}

// lastProps returns the properties of the last enqueued document.
func (h *harness) lastProps(t *testing.T) event.Properties {
	t.Helper()
	doc := h.queue.Last()
	if doc == nil {
		t.Fatal("no document enqueued")
	}
	return doc.Properties
}

// failingStore wraps a store and fails writes on demand.
type failingStore struct {
	store.Store
	putErr error
}

func (s *failingStore) Put(namespace, key, value string) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(namespace, key, value)
}

// failingQueue rejects every document.
type failingQueue struct {
	*delivery.MemoryQueue
}

func (failingQueue) Enqueue(*event.Document) error {
	return delivery.ErrQueueFull
}

var errDiskFull = errors.New("disk full")
