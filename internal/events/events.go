// Package events provides the in-process pub/sub channel that keeps
// connected viewers synchronized after timetable mutations.
package events

import "sync"

// Topic names match the signals pushed to connected clients. Every
// committed mutation emits TopicUpdate; admin-relevant mutations
// (closures, deletions, resets) additionally emit TopicAdminUpdate.
const (
	TopicUpdate      = "update"
	TopicAdminUpdate = "admin-update"
)

// Handler reacts to a published topic. Handlers run synchronously on the
// publishing goroutine and must not block.
type Handler func(topic string)

// Bus is an in-process fan-out of change signals.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

// Publish notifies subscribers of the topic. Delivery is fire-and-forget;
// a handler can never fail the mutation that triggered it.
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(topic)
	}
}
