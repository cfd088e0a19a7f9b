// Package events provides the pub/sub event bus for nfcond. Condition
// lifecycle and toggle activity flows through this hub to the websocket
// stream and any other subscriber.
package events

import "time"

// EventType identifies the category of event.
type EventType string

const (
	// Condition variable events
	EventConditionCreated   EventType = "condition.created"
	EventConditionDestroyed EventType = "condition.destroyed"
	EventConditionToggled   EventType = "condition.toggled"

	// Registry (isolated context) events
	EventNamespaceCreated   EventType = "namespace.created"
	EventNamespaceDestroyed EventType = "namespace.destroyed"

	// Trigger gate events
	EventTriggerAccepted EventType = "trigger.accepted"
	EventTriggerRejected EventType = "trigger.rejected"
)

// Event is the core message passed through the event bus.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
}

// ConditionData is the payload for condition.* events.
type ConditionData struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled,omitempty"`
	Applied   bool   `json:"applied,omitempty"`
}

// NamespaceData is the payload for namespace.* events.
type NamespaceData struct {
	Namespace string `json:"namespace"`
}

// TriggerData is the payload for trigger.* events.
type TriggerData struct {
	Command string `json:"command,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
