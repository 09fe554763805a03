package models

import "time"

// Event types
const (
	EventTypeShelvesChanged  = "SHELVES_CHANGED"
	EventTypeRequestsChanged = "REQUESTS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ShelvesChangedEvent published after any write to the shelves collection.
// Consumers treat it as an invalidation signal and reload the collection;
// Shelf and Action only describe what triggered it.
type ShelvesChangedEvent struct {
	BaseEvent
	Shelf   string `json:"shelf,omitempty"`
	Product string `json:"product,omitempty"`
	Action  string `json:"action"`
}

// RequestsChangedEvent published after any write to the requests collection.
type RequestsChangedEvent struct {
	BaseEvent
	Product string `json:"product,omitempty"`
	Action  string `json:"action"`
}
