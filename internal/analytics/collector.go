package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/word-puzzle-engine/pkg/metrics"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
)

// Publisher ships batches of events; *kafka.Producer implements it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Recorder consumes events in-process; *Aggregator implements it.
type Recorder interface {
	Record(event QueryEvent)
}

// Collector buffers query events off the request path and forwards them in
// batches to a Publisher and, when set, to a local Recorder. Track never
// blocks: events are dropped when the buffer is full or the collector is
// closed.
type Collector struct {
	publisher     Publisher
	recorder      Recorder
	eventCh       chan QueryEvent
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	dropped       atomic.Int64
	logger        *slog.Logger

	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
	quit    chan struct{}
	done    chan struct{}
}

// NewCollector creates a Collector. publisher, recorder and m may each be
// nil.
func NewCollector(publisher Publisher, recorder Recorder, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher:     publisher,
		recorder:      recorder,
		eventCh:       make(chan QueryEvent, bufferSize),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		metrics:       m,
		logger:        logger.WithComponent("analytics-collector"),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start launches the forwarding loop. It ends when ctx is done or Close is
// called, flushing what is buffered.
func (c *Collector) Start(ctx context.Context) {
	c.started.Store(true)
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		batch := make([]QueryEvent, 0, c.batchSize)
		for {
			select {
			case event := <-c.eventCh:
				batch = append(batch, event)
				if len(batch) >= c.batchSize {
					c.flush(ctx, batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				c.flush(ctx, batch)
				batch = batch[:0]
			case <-c.quit:
				c.flush(context.Background(), c.drain(batch))
				return
			case <-ctx.Done():
				c.flush(context.Background(), c.drain(batch))
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh), "batch_size", c.batchSize)
}

// Track queues event for forwarding. It is safe to call after Close.
func (c *Collector) Track(event QueryEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.drop(event, "collector closed")
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.drop(event, "buffer full")
	}
}

func (c *Collector) drop(event QueryEvent, reason string) {
	c.dropped.Add(1)
	if c.metrics != nil {
		c.metrics.EventsDroppedTotal.Inc()
	}
	c.logger.Warn("analytics event dropped", "kind", event.Kind, "reason", reason)
}

// Dropped returns how many events Track has discarded.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and, if Start was called, waits for the
// final flush. Repeated calls are no-ops.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.quit)
	}
	c.mu.Unlock()
	if c.started.Load() {
		<-c.done
	}
}

func (c *Collector) drain(batch []QueryEvent) []QueryEvent {
	for {
		select {
		case event := <-c.eventCh:
			batch = append(batch, event)
		default:
			return batch
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []QueryEvent) {
	if len(batch) == 0 {
		return
	}
	if c.recorder != nil {
		for _, event := range batch {
			c.recorder.Record(event)
		}
	}
	if c.publisher == nil {
		return
	}
	events := make([]kafka.Event, len(batch))
	for i, event := range batch {
		events[i] = kafka.Event{Key: event.Kind, Value: event}
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.publisher.PublishBatch(pubCtx, events); err != nil {
		c.logger.Error("failed to publish analytics events", "count", len(events), "error", err)
	}
}
