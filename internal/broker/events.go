package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"warehouse-service/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes collection-change events. It stands in for the
// document store's own push channel: every successful write is followed by
// an event telling mirror holders to reload the collection.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishShelvesChanged signals that the shelves collection was written.
func (ep *EventPublisher) PublishShelvesChanged(ctx context.Context, action, shelf, product string) error {
	event := &models.ShelvesChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeShelvesChanged),
		Shelf:     shelf,
		Product:   product,
		Action:    action,
	}
	return ep.producer.PublishEvent(ctx, "shelves", event)
}

// PublishRequestsChanged signals that the requests collection was written.
func (ep *EventPublisher) PublishRequestsChanged(ctx context.Context, action, product string) error {
	event := &models.RequestsChangedEvent{
		BaseEvent: newBaseEvent(models.EventTypeRequestsChanged),
		Product:   product,
		Action:    action,
	}
	return ep.producer.PublishEvent(ctx, "requests", event)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// EventHandler routes change events to registered callbacks.
type EventHandler struct {
	onShelvesChanged  func(context.Context, *models.ShelvesChangedEvent) error
	onRequestsChanged func(context.Context, *models.RequestsChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnShelvesChanged registers a handler for ShelvesChanged events
func (eh *EventHandler) OnShelvesChanged(handler func(context.Context, *models.ShelvesChangedEvent) error) {
	eh.onShelvesChanged = handler
}

// OnRequestsChanged registers a handler for RequestsChanged events
func (eh *EventHandler) OnRequestsChanged(handler func(context.Context, *models.RequestsChangedEvent) error) {
	eh.onRequestsChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeShelvesChanged:
		if eh.onShelvesChanged != nil {
			var event models.ShelvesChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ShelvesChanged event: %w", err)
			}
			return eh.onShelvesChanged(ctx, &event)
		}

	case models.EventTypeRequestsChanged:
		if eh.onRequestsChanged != nil {
			var event models.RequestsChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal RequestsChanged event: %w", err)
			}
			return eh.onRequestsChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
