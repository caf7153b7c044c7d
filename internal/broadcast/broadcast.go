// Package broadcast fans events out to live subscribers. Delivery is best
// effort: writes never block the publisher, and a subscriber that cannot
// keep up is dropped without affecting the others.
package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types sent over the wire.
const (
	TypeConnected = "connected"
	TypeHeartbeat = "heartbeat"
	TypeUpdate    = "update"
	TypeCCTVAlert = "cctv_alert"
)

// DefaultHeartbeat keeps idle SSE connections from being reaped by proxies.
const DefaultHeartbeat = 30 * time.Second

// subscriberBuffer is the per-subscriber channel depth before the
// subscriber counts as stalled.
const subscriberBuffer = 16

// Event is one broadcast message.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Broadcaster distributes events to subscriber channels and emits periodic
// heartbeats until closed.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool

	heartbeat time.Duration
	done      chan struct{}
	logger    *zap.Logger
}

// New creates a broadcaster and starts its heartbeat loop. interval <= 0
// uses DefaultHeartbeat.
func New(interval time.Duration, logger *zap.Logger) *Broadcaster {
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
		heartbeat:   interval,
		done:        make(chan struct{}),
		logger:      logger,
	}
	go b.heartbeatLoop()
	return b
}

// Subscribe registers a new subscriber and delivers the connected event as
// its first message. The returned channel is closed on Unsubscribe, on
// broadcaster Close, or when the subscriber stalls.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	b.subscribers[ch] = struct{}{}
	ch <- Event{Type: TypeConnected, Timestamp: time.Now()}
	b.logger.Debug("subscriber connected", zap.Int("subscribers", len(b.subscribers)))
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown channels
// are ignored.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
	b.logger.Debug("subscriber disconnected", zap.Int("subscribers", len(b.subscribers)))
}

// Publish delivers an event to every subscriber without blocking. A
// subscriber whose buffer is full is dropped on the spot.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			delete(b.subscribers, ch)
			close(ch)
			b.logger.Warn("dropped stalled subscriber",
				zap.String("event", event.Type),
				zap.Int("subscribers", len(b.subscribers)))
		}
	}
}

// Count returns the number of live subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close stops the heartbeat loop and closes every subscriber channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)

	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *Broadcaster) heartbeatLoop() {
	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.Publish(Event{Type: TypeHeartbeat, Timestamp: time.Now()})
		case <-b.done:
			return
		}
	}
}
