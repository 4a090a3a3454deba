package delivery

import (
	"sync"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/event"
)

// MemoryQueue records documents instead of sending them.
// Useful for testing and dry runs.
type MemoryQueue struct {
	mu        sync.Mutex
	docs      []*event.Document
	endpoints []string
	interval  time.Duration
	flushes   int
}

// NewMemoryQueue creates an empty MemoryQueue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

// Enqueue implements Queue.
func (q *MemoryQueue) Enqueue(doc *event.Document) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.docs = append(q.docs, doc)
	return nil
}

// Flush implements Queue.
func (q *MemoryQueue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flushes++
}

// SetEndpoint implements Queue.
func (q *MemoryQueue) SetEndpoint(url string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.endpoints = append(q.endpoints, url)
}

// SetFlushInterval implements Queue.
func (q *MemoryQueue) SetFlushInterval(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.interval = d
}

// Documents returns the enqueued documents in order.
func (q *MemoryQueue) Documents() []*event.Document {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*event.Document, len(q.docs))
	copy(out, q.docs)
	return out
}

// Last returns the most recently enqueued document, or nil.
func (q *MemoryQueue) Last() *event.Document {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.docs) == 0 {
		return nil
	}
	return q.docs[len(q.docs)-1]
}

// Endpoints returns every endpoint passed to SetEndpoint, in order.
func (q *MemoryQueue) Endpoints() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.endpoints))
	copy(out, q.endpoints)
	return out
}

// FlushInterval returns the last interval passed to SetFlushInterval.
func (q *MemoryQueue) FlushInterval() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.interval
}

// Flushes returns how many times Flush was called.
func (q *MemoryQueue) Flushes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flushes
}
