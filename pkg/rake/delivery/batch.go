package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/observability"
	"github.com/randalmurphal/rake/pkg/rake/retry"
)

// Config configures a BatchQueue.
type Config struct {
	// Endpoint is the initial collector URL.
	// Default: LiveEndpoint
	Endpoint string

	// FlushInterval is how often queued documents are sent.
	// Default: 60 seconds
	FlushInterval time.Duration

	// BatchSize is the maximum number of documents per request.
	// Default: 50
	BatchSize int

	// QueueSize is the number of documents buffered before Enqueue drops.
	// Default: 1000
	QueueSize int

	// Retry controls resending of transiently failed batches.
	// Default: retry.Default
	Retry retry.Config

	// Logger receives delivery diagnostics. Default: slog.Default()
	Logger *slog.Logger

	// Metrics records batch sends. Default: observability.NoopMetrics{}
	Metrics observability.MetricsRecorder

	// Spans traces batch sends. Default: observability.NoopSpanManager{}
	Spans observability.SpanManager

	// OnDrop is called with documents that were discarded, either because
	// the buffer was full or because their batch could not be delivered.
	OnDrop func(docs []*event.Document, err error)
}

// DefaultConfig provides reasonable defaults.
var DefaultConfig = Config{
	Endpoint:      LiveEndpoint,
	FlushInterval: 60 * time.Second,
	BatchSize:     50,
	QueueSize:     1000,
	Retry:         retry.Default,
}

// BatchQueue buffers documents and sends them in batches from a single
// worker goroutine.
type BatchQueue struct {
	cfg    Config
	sender Sender

	endpointMu sync.RWMutex
	endpoint   string

	in         chan *event.Document
	flushCh    chan struct{}
	intervalCh chan time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// closeMu orders Enqueue's closed check and send before Close's
	// final drain.
	closeMu sync.RWMutex
	closed  atomic.Bool
	closeCh chan struct{}
	done    chan struct{}
}

var _ Queue = (*BatchQueue)(nil)

// NewBatchQueue creates a BatchQueue and starts its worker.
// Call Close to flush remaining documents and stop the worker.
func NewBatchQueue(sender Sender, cfg Config) *BatchQueue {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultConfig.Endpoint
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig.FlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig.BatchSize
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig.QueueSize
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultConfig.Retry
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Spans == nil {
		cfg.Spans = observability.NoopSpanManager{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &BatchQueue{
		cfg:        cfg,
		sender:     sender,
		endpoint:   cfg.Endpoint,
		in:         make(chan *event.Document, cfg.QueueSize),
		flushCh:    make(chan struct{}, 1),
		intervalCh: make(chan time.Duration, 1),
		ctx:        ctx,
		cancel:     cancel,
		closeCh:    make(chan struct{}),
		done:       make(chan struct{}),
	}

	go q.run()
	return q
}

// Enqueue implements Queue.
func (q *BatchQueue) Enqueue(doc *event.Document) error {
	if err := q.offer(doc); err != nil {
		if errors.Is(err, ErrQueueFull) && q.cfg.OnDrop != nil {
			q.cfg.OnDrop([]*event.Document{doc}, err)
		}
		return err
	}
	return nil
}

// offer buffers doc unless the queue is closed or full.
func (q *BatchQueue) offer(doc *event.Document) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case q.in <- doc:
		return nil
	default:
		return ErrQueueFull
	}
}

// Flush implements Queue.
func (q *BatchQueue) Flush() {
	select {
	case q.flushCh <- struct{}{}:
	default:
		// A flush is already pending.
	}
}

// SetEndpoint implements Queue.
func (q *BatchQueue) SetEndpoint(url string) {
	q.endpointMu.Lock()
	defer q.endpointMu.Unlock()
	q.endpoint = url
}

// Endpoint returns the current collector URL.
func (q *BatchQueue) Endpoint() string {
	q.endpointMu.RLock()
	defer q.endpointMu.RUnlock()
	return q.endpoint
}

// SetFlushInterval implements Queue. Non-positive durations are ignored.
func (q *BatchQueue) SetFlushInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case q.intervalCh <- d:
			return
		default:
		}
		// Replace a pending interval change that the worker hasn't seen yet.
		select {
		case <-q.intervalCh:
		default:
		}
	}
}

// Close stops accepting documents, sends what is buffered and stops the
// worker. If ctx expires first, in-flight sends are cancelled.
func (q *BatchQueue) Close(ctx context.Context) error {
	q.closeMu.Lock()
	if !q.closed.CompareAndSwap(false, true) {
		q.closeMu.Unlock()
		return nil
	}
	close(q.closeCh)
	q.closeMu.Unlock()

	select {
	case <-q.done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-q.done
		return ctx.Err()
	}
}

// run is the worker loop.
func (q *BatchQueue) run() {
	defer close(q.done)

	ticker := time.NewTicker(q.cfg.FlushInterval)
	defer ticker.Stop()

	pending := make([]*event.Document, 0, q.cfg.BatchSize)
	sendPending := func() {
		if len(pending) == 0 {
			return
		}
		q.send(pending)
		pending = make([]*event.Document, 0, q.cfg.BatchSize)
	}

	for {
		select {
		case doc := <-q.in:
			pending = append(pending, doc)
			if len(pending) >= q.cfg.BatchSize {
				sendPending()
			}

		case <-ticker.C:
			sendPending()

		case <-q.flushCh:
			pending = q.drain(pending)
			sendPending()

		case d := <-q.intervalCh:
			ticker.Reset(d)

		case <-q.closeCh:
			pending = q.drain(pending)
			sendPending()
			return
		}
	}
}

// drain moves every buffered document into pending without blocking.
func (q *BatchQueue) drain(pending []*event.Document) []*event.Document {
	for {
		select {
		case doc := <-q.in:
			pending = append(pending, doc)
		default:
			return pending
		}
	}
}

// send delivers docs in chunks of at most BatchSize.
func (q *BatchQueue) send(docs []*event.Document) {
	for start := 0; start < len(docs); start += q.cfg.BatchSize {
		end := min(start+q.cfg.BatchSize, len(docs))
		q.sendBatch(Batch{ID: uuid.NewString(), Events: docs[start:end]})
	}
}

func (q *BatchQueue) sendBatch(batch Batch) {
	endpoint := q.Endpoint()
	ctx, span := q.cfg.Spans.StartFlushSpan(q.ctx, endpoint, len(batch.Events))

	res := retry.Do(ctx, q.cfg.Retry, func(ctx context.Context) (struct{}, error) {
		err := q.sender.Send(ctx, endpoint, batch)
		q.cfg.Metrics.RecordDelivery(ctx, endpoint, len(batch.Events), err)
		return struct{}{}, err
	})
	q.cfg.Spans.EndSpanWithError(span, res.Err)

	if res.Err != nil {
		observability.LogDeliveryError(q.cfg.Logger, endpoint, len(batch.Events), res.Err)
		if q.cfg.OnDrop != nil {
			q.cfg.OnDrop(batch.Events, res.Err)
		}
		return
	}
	observability.LogDelivery(q.cfg.Logger, endpoint, len(batch.Events), res.Attempts,
		float64(res.Duration.Microseconds())/1000)
}
