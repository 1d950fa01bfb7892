package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// defaultQueueSize is the per-subscriber queue depth when none is configured.
const defaultQueueSize = 64

// Logger defines the logging interface used by the broadcaster.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Subscriber is one independent consumer of the event stream.
type Subscriber struct {
	id string
	ch chan Event
}

// ID returns the subscriber's unique handle.
func (s *Subscriber) ID() string {
	return s.id
}

// Events returns the subscriber's receive channel. The channel is closed
// on Unsubscribe, so ranging over it terminates cleanly.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Broadcaster distributes events to any number of subscribers without
// cross-subscriber coupling.
type Broadcaster struct {
	mu        sync.RWMutex
	subs      map[string]*Subscriber
	queueSize int
	dropped   atomic.Uint64
	logger    Logger
}

// New creates a broadcaster. queueSize bounds each subscriber's queue;
// zero or negative selects the default.
func New(queueSize int, logger Logger) *Broadcaster {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Broadcaster{
		subs:      make(map[string]*Subscriber),
		queueSize: queueSize,
		logger:    logger,
	}
}

// Subscribe registers a new subscriber with its own bounded queue.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.NewString(),
		ch: make(chan Event, b.queueSize),
	}

	b.mu.Lock()
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "subscriber_id", sub.id, "total", count)
	return sub
}

// Unsubscribe removes a subscriber and closes its channel.
// Safe to call more than once for the same subscriber.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.subs[sub.id]
	if ok {
		delete(b.subs, sub.id)
	}
	count := len(b.subs)
	b.mu.Unlock()

	if ok {
		close(sub.ch)
		b.logger.Debug("subscriber removed", "subscriber_id", sub.id, "total", count)
	}
}

// Publish enqueues an event for every subscriber. A full queue drops its
// oldest event in favour of the new one; the publisher never blocks and
// no subscriber can affect delivery to another. Publishing with zero
// subscribers is a no-op.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		// Queue full: make room by discarding the oldest entry.
		select {
		case <-sub.ch:
			b.dropped.Add(1)
		default:
		}
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// DeviceUpdated publishes a device_update event for the record.
// Satisfies the registry's publisher contract.
func (b *Broadcaster) DeviceUpdated(record *tracking.Record) {
	b.Publish(NewDeviceUpdate(record))
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns the total number of events discarded due to full queues.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close unsubscribes every subscriber. Further Publish calls are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[string]*Subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
}
