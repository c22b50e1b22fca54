package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/anr091/project-kapita/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishProductCreated publishes ProductCreated event
func (ep *EventPublisher) PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductUpdated publishes ProductUpdated event
func (ep *EventPublisher) PublishProductUpdated(ctx context.Context, event *models.ProductUpdatedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductDeleted publishes ProductDeleted event
func (ep *EventPublisher) PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishStockReceived publishes StockReceived event
func (ep *EventPublisher) PublishStockReceived(ctx context.Context, event *models.StockReceivedEvent) error {
	key := fmt.Sprintf("arrival-%s", event.ArrivalID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishStockShipped publishes StockShipped event
func (ep *EventPublisher) PublishStockShipped(ctx context.Context, event *models.StockShippedEvent) error {
	key := fmt.Sprintf("shipment-%s", event.ShipmentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onStockReceived  func(context.Context, *models.StockReceivedEvent) error
	onStockShipped   func(context.Context, *models.StockShippedEvent) error
	onProductCreated func(context.Context, *models.ProductCreatedEvent) error
	onProductDeleted func(context.Context, *models.ProductDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnStockReceived registers a handler for StockReceived events
func (eh *EventHandler) OnStockReceived(handler func(context.Context, *models.StockReceivedEvent) error) {
	eh.onStockReceived = handler
}

// OnStockShipped registers a handler for StockShipped events
func (eh *EventHandler) OnStockShipped(handler func(context.Context, *models.StockShippedEvent) error) {
	eh.onStockShipped = handler
}

// OnProductCreated registers a handler for ProductCreated events
func (eh *EventHandler) OnProductCreated(handler func(context.Context, *models.ProductCreatedEvent) error) {
	eh.onProductCreated = handler
}

// OnProductDeleted registers a handler for ProductDeleted events
func (eh *EventHandler) OnProductDeleted(handler func(context.Context, *models.ProductDeletedEvent) error) {
	eh.onProductDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeStockReceived:
		if eh.onStockReceived != nil {
			var event models.StockReceivedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockReceived event: %w", err)
			}
			return eh.onStockReceived(ctx, &event)
		}

	case models.EventTypeStockShipped:
		if eh.onStockShipped != nil {
			var event models.StockShippedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockShipped event: %w", err)
			}
			return eh.onStockShipped(ctx, &event)
		}

	case models.EventTypeProductCreated:
		if eh.onProductCreated != nil {
			var event models.ProductCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductCreated event: %w", err)
			}
			return eh.onProductCreated(ctx, &event)
		}

	case models.EventTypeProductDeleted:
		if eh.onProductDeleted != nil {
			var event models.ProductDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductDeleted event: %w", err)
			}
			return eh.onProductDeleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
