// Package delivery hands composed event documents to a collector.
//
// The client only ever calls Enqueue, which never blocks on the network.
// BatchQueue owns a single worker goroutine that groups documents into
// batches and sends them on a timer, on an explicit Flush, or when a batch
// fills up. Transient send failures are retried with backoff; batches that
// still fail are dropped and reported through Config.OnDrop.
package delivery

import (
	"errors"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/event"
)

// Collector endpoints selected by the dev-server flag.
const (
	LiveEndpoint = "https://rake.skplanet.com:8443/log/track"
	DevEndpoint  = "https://pg.rake.skplanet.com:8443/log/track"
)

// Queue accepts composed documents for eventual delivery.
// Implementations must be safe for concurrent use.
type Queue interface {
	// Enqueue takes ownership of doc. It must not block on delivery.
	Enqueue(doc *event.Document) error

	// Flush requests an out-of-band send of queued documents.
	// It returns without waiting for the send to complete.
	Flush()

	// SetEndpoint changes the collector URL used for future sends.
	SetEndpoint(url string)

	// SetFlushInterval changes how often queued documents are sent.
	SetFlushInterval(d time.Duration)
}

// Sentinel errors for queue operations.
var (
	// ErrQueueFull indicates the document was dropped because the buffer is full.
	ErrQueueFull = errors.New("delivery: queue full")

	// ErrQueueClosed indicates the queue no longer accepts documents.
	ErrQueueClosed = errors.New("delivery: queue closed")
)
