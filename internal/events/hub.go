package events

import (
	"sync"
	"time"
)

// Hub is the central event bus. It provides pub/sub semantics with typed
// events and non-blocking fan-out.
type Hub struct {
	mu   sync.RWMutex
	subs map[EventType][]chan Event

	// Global subscribers receive all events
	global []chan Event

	published uint64
	dropped   uint64
}

// NewHub creates a new event hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[EventType][]chan Event),
	}
}

// Publish sends an event to all subscribers of that event type. This is
// non-blocking: if a subscriber's channel is full, the event is dropped.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.published++

	for _, ch := range h.subs[e.Type] {
		select {
		case ch <- e:
		default:
			h.dropped++
		}
	}
	for _, ch := range h.global {
		select {
		case ch <- e:
		default:
			h.dropped++
		}
	}
}

// Subscribe returns a channel that receives events of the specified types.
// If no types are specified, subscribes to all events. The caller is
// responsible for draining the channel to avoid drops.
func (h *Hub) Subscribe(bufSize int, types ...EventType) <-chan Event {
	if bufSize <= 0 {
		bufSize = 256
	}

	ch := make(chan Event, bufSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(types) == 0 {
		h.global = append(h.global, ch)
	} else {
		for _, t := range types {
			h.subs[t] = append(h.subs[t], ch)
		}
	}

	return ch
}

// Unsubscribe removes a channel from all subscriptions. The channel is NOT
// closed by this method.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.global = removeFromSlice(h.global, ch)
	for t, subs := range h.subs {
		h.subs[t] = removeFromSlice(subs, ch)
	}
}

// Stats returns publish/drop counts for monitoring.
func (h *Hub) Stats() (published, dropped uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.published, h.dropped
}

func removeFromSlice(slice []chan Event, target <-chan Event) []chan Event {
	result := make([]chan Event, 0, len(slice))
	for _, ch := range slice {
		if ch != target {
			result = append(result, ch)
		}
	}
	return result
}

// EmitConditionToggled publishes an endpoint-write event.
func (h *Hub) EmitConditionToggled(namespace, name string, enabled, applied bool) {
	h.Publish(Event{
		Type:   EventConditionToggled,
		Source: "condition",
		Data: ConditionData{
			Namespace: namespace,
			Name:      name,
			Enabled:   enabled,
			Applied:   applied,
		},
	})
}

// EmitConditionLifecycle publishes a created/destroyed event.
func (h *Hub) EmitConditionLifecycle(t EventType, namespace, name string) {
	h.Publish(Event{
		Type:   t,
		Source: "condition",
		Data: ConditionData{
			Namespace: namespace,
			Name:      name,
		},
	})
}

// EmitNamespace publishes a namespace lifecycle event.
func (h *Hub) EmitNamespace(t EventType, namespace string) {
	h.Publish(Event{
		Type:   t,
		Source: "namespace",
		Data:   NamespaceData{Namespace: namespace},
	})
}
