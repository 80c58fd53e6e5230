package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/snaplink/snaplink/internal/metrics"
)

// DefaultQueueSize bounds the dispatch queue when the configured size
// is not positive.
const DefaultQueueSize = 1024

// recordTimeout bounds each background insert so a stalled database
// cannot wedge the worker.
const recordTimeout = 5 * time.Second

type job struct {
	linkID string
	client ClientContext
}

// Dispatcher decouples click recording from the redirect path. Enqueue
// never blocks: when the queue is full the event is dropped and
// counted, never the request delayed. One worker goroutine drains the
// queue and writes through the Service.
type Dispatcher struct {
	service *Service
	logger  *slog.Logger
	rec     metrics.Recorder
	queue   chan job

	mu      sync.Mutex
	started bool
	closing bool
	cancel  context.CancelFunc
	done    chan struct{}

	dropped uint64
}

// NewDispatcher creates a Dispatcher with a bounded queue. A nil
// recorder discards metrics.
func NewDispatcher(service *Service, logger *slog.Logger, queueSize int, rec metrics.Recorder) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Dispatcher{
		service: service,
		logger:  logger,
		rec:     rec,
		queue:   make(chan job, queueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go d.run(ctx)
}

// Enqueue hands a click to the background worker. Returns false when
// the event was dropped because the queue is full or the dispatcher is
// shutting down; the caller proceeds either way.
func (d *Dispatcher) Enqueue(linkID string, client ClientContext) bool {
	// The send stays under the mutex so Shutdown cannot close the queue
	// between the closing check and the send. It never blocks, so the
	// critical section is a channel buffer write at worst.
	d.mu.Lock()
	if d.closing || !d.started {
		d.mu.Unlock()
		return false
	}

	select {
	case d.queue <- job{linkID: linkID, client: client}:
		depth := int64(len(d.queue))
		d.mu.Unlock()
		d.rec.SetAnalyticsQueueDepth(depth)
		return true
	default:
		d.dropped++
		dropped := d.dropped
		d.mu.Unlock()
		d.rec.IncClickDropped()
		d.logger.Warn("click event dropped, queue full",
			"link_id", linkID,
			"dropped_total", dropped,
		)
		return false
	}
}

// Dropped reports how many events have been discarded since start.
func (d *Dispatcher) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Shutdown stops accepting events, drains what is already queued, and
// waits for the worker to exit or the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.started || d.closing {
		d.mu.Unlock()
		return nil
	}
	d.closing = true
	// Closed under the same mutex that guards Enqueue's send, so no
	// sender can be mid-send when the channel closes.
	close(d.queue)
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)

	for j := range d.queue {
		recordCtx, cancel := context.WithTimeout(ctx, recordTimeout)
		if err := d.service.Record(recordCtx, j.linkID, j.client); err != nil {
			d.logger.Error("failed to record click",
				"link_id", j.linkID,
				"error", err,
			)
		} else {
			d.rec.IncClickRecorded()
		}
		cancel()

		// A cancelled parent means shutdown gave up waiting; stop
		// burning writes that will fail anyway.
		if ctx.Err() != nil {
			return
		}
	}
}
