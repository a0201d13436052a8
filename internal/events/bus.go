// Package events fans outbound ringing notifications out to sinks and
// stream subscribers without ever blocking the publisher.
package events

import (
	"context"
	"log/slog"
	"sync"

	"reveille/internal/core"
	"reveille/internal/metrics"
)

// Sink receives every published event on its own goroutine
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev core.Event) error
}

// Publisher is the narrow view components publish through
type Publisher interface {
	Publish(ev core.Event)
}

// Bus dispatches events to registered sinks and subscribers
type Bus struct {
	mu          sync.RWMutex
	sinks       []Sink
	subscribers map[int]chan core.Event
	nextSubID   int
	bufferSize  int
	logger      *slog.Logger
	wg          sync.WaitGroup
	closed      bool
}

// NewBus creates a bus; bufferSize bounds each subscriber's queue
func NewBus(bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Bus{
		subscribers: make(map[int]chan core.Event),
		bufferSize:  bufferSize,
		logger:      logger.With("component", "events"),
	}
}

// AddSink registers a sink
func (b *Bus) AddSink(s Sink) {
	b.mu.Lock()
	b.sinks = append(b.sinks, s)
	b.mu.Unlock()
}

// Subscribe returns a channel of future events and a function that ends the subscription
func (b *Bus) Subscribe() (<-chan core.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	ch := make(chan core.Event, b.bufferSize)
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish hands ev to every sink and subscriber and returns immediately
func (b *Bus) Publish(ev core.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.logger.Debug("bus closed, event dropped", "type", ev.Type, "alarm_id", ev.AlarmID)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()

	for _, s := range b.sinks {
		b.wg.Add(1)
		go func(s Sink) {
			defer b.wg.Done()
			if err := s.Deliver(context.Background(), ev); err != nil {
				b.logger.Warn("event sink failed", "sink", s.Name(), "type", ev.Type, "alarm_id", ev.AlarmID, "error", err)
			}
		}(s)
	}

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			metrics.EventsDropped.Inc()
			b.logger.Warn("subscriber too slow, event dropped", "subscriber", id, "type", ev.Type)
		}
	}
}

// Wait blocks until in-flight sink deliveries finish. Publishing must be
// quiescent; use Close when publishers may still be running.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// Close stops accepting events and waits for in-flight sink deliveries.
// Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
}

// LogSink writes every event to the log
type LogSink struct {
	Logger *slog.Logger
}

// Name identifies the sink
func (LogSink) Name() string { return "log" }

// Deliver logs the event
func (s LogSink) Deliver(ctx context.Context, ev core.Event) error {
	s.Logger.Info("Alarm event",
		"type", ev.Type,
		"alarm_id", ev.AlarmID,
		"message", ev.Message,
		"game_type", ev.GameType,
		"at", ev.At)
	return nil
}

var _ Publisher = (*Bus)(nil)
