package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/kafka"
)

// Publisher writes events to a topic. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector publishes similarity events in the background so scoring never
// waits on Kafka. Events beyond the buffer are dropped.
type Collector struct {
	publisher Publisher
	eventCh   chan SimilarityEvent
	logger    *slog.Logger
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan SimilarityEvent, bufferSize),
		logger:    slog.Default().With("component", "similarity-collector"),
		done:      make(chan struct{}),
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
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("similarity collector started", "buffer_size", cap(c.eventCh))
}

// Track queues an event. A nil or closed Collector ignores it.
func (c *Collector) Track(event SimilarityEvent) {
	if c == nil {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.logger.Debug("similarity event dropped (collector closed)")
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("similarity event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for queued ones to be published.
func (c *Collector) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event SimilarityEvent) {
	if err := c.publisher.Publish(ctx, kafka.Event{
		Key:   string(event.Mode),
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish similarity event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
