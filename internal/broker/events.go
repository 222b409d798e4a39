package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"retail-api/internal/models"
	"retail-api/internal/util"

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

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("pedido-%d", event.PedidoID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderCancelled publishes OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	key := fmt.Sprintf("pedido-%d", event.PedidoID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onOrderCreated   func(context.Context, *models.OrderCreatedEvent) error
	onOrderCancelled func(context.Context, *models.OrderCancelledEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderCreated registers a handler for OrderCreated events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// OnOrderCancelled registers a handler for OrderCancelled events
func (eh *EventHandler) OnOrderCancelled(handler func(context.Context, *models.OrderCancelledEvent) error) {
	eh.onOrderCancelled = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderCreated:
		if eh.onOrderCreated != nil {
			var event models.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCreated event: %w", err)
			}
			return eh.onOrderCreated(ctx, &event)
		}

	case models.EventTypeOrderCancelled:
		if eh.onOrderCancelled != nil {
			var event models.OrderCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCancelled event: %w", err)
			}
			return eh.onOrderCancelled(ctx, &event)
		}

	default:
		util.GetLogger().Warn("unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
