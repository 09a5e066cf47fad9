package analytics

import (
	"context"
	"log/slog"

	"github.com/ravindradesineni/Movie-recommendation/pkg/kafka"
)

// Tracker accepts query events. Both Collector (publishes to Kafka) and
// Aggregator (records in process) implement it.
type Tracker interface {
	Track(event QueryEvent)
}

// Publisher is the subset of kafka.Producer the collector uses.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector buffers query events and publishes them from a single
// goroutine so request handlers never wait on Kafka.
type Collector struct {
	producer Publisher
	eventCh  chan QueryEvent
	logger   *slog.Logger
	done     chan struct{}
}

func NewCollector(producer Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan QueryEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				if err := c.producer.Publish(ctx, toKafka(event)); err != nil {
					c.logger.Error("failed to publish query event", "error", err)
				}
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues event, dropping it when the buffer is full.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("query event dropped (buffer full)", "kind", event.Kind)
	}
}

// Close stops accepting events and waits for the publisher goroutine.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

// drainRemaining publishes whatever is still buffered in one batch.
func (c *Collector) drainRemaining() {
	var batch []kafka.Event
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.publishBatch(batch)
				return
			}
			batch = append(batch, toKafka(event))
		default:
			c.publishBatch(batch)
			return
		}
	}
}

func (c *Collector) publishBatch(batch []kafka.Event) {
	if len(batch) == 0 {
		return
	}
	if err := c.producer.PublishBatch(context.Background(), batch); err != nil {
		c.logger.Error("failed to publish remaining events", "count", len(batch), "error", err)
	}
}

func toKafka(event QueryEvent) kafka.Event {
	return kafka.Event{Key: event.Kind, Value: event}
}
