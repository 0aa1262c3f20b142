package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"marketplace-service/internal/models"
)

// EventPublisher wraps the producer with typed order lifecycle events.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// PublishOrderCheckedOut publishes an order checked out event
func (ep *EventPublisher) PublishOrderCheckedOut(ctx context.Context, order *models.Order) error {
	event := models.OrderCheckedOutEvent{
		BaseEvent:  newBaseEvent(models.EventTypeOrderCheckedOut),
		OrderID:    order.ID,
		CartID:     order.CartID,
		CustomerID: order.CustomerID,
		Total:      order.Total,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderPaid publishes an order paid event
func (ep *EventPublisher) PublishOrderPaid(ctx context.Context, order *models.Order, walletAccountID, deliveryFee int64) error {
	event := models.OrderPaidEvent{
		BaseEvent:       newBaseEvent(models.EventTypeOrderPaid),
		OrderID:         order.ID,
		WalletAccountID: walletAccountID,
		Amount:          order.Total,
		DeliveryFee:     deliveryFee,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderCancelled publishes an order cancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, refund int64) error {
	event := models.OrderCancelledEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderCancelled),
		OrderID:   order.ID,
		Refund:    refund,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderTaken publishes an order taken event
func (ep *EventPublisher) PublishOrderTaken(ctx context.Context, order *models.Order, workerID int64) error {
	event := models.OrderTakenEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderTaken),
		OrderID:   order.ID,
		WorkerID:  workerID,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// PublishOrderCompleted publishes an order completed event
func (ep *EventPublisher) PublishOrderCompleted(ctx context.Context, order *models.Order, workerID, deliveryFee int64) error {
	event := models.OrderCompletedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderCompleted),
		OrderID:     order.ID,
		WorkerID:    workerID,
		DeliveryFee: deliveryFee,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// EventHandler routes consumed messages to typed callbacks.
type EventHandler struct {
	checkedOutHandler func(ctx context.Context, event models.OrderCheckedOutEvent) error
	paidHandler       func(ctx context.Context, event models.OrderPaidEvent) error
	cancelledHandler  func(ctx context.Context, event models.OrderCancelledEvent) error
	takenHandler      func(ctx context.Context, event models.OrderTakenEvent) error
	completedHandler  func(ctx context.Context, event models.OrderCompletedEvent) error
}

func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

func (eh *EventHandler) OnOrderCheckedOut(handler func(ctx context.Context, event models.OrderCheckedOutEvent) error) {
	eh.checkedOutHandler = handler
}

func (eh *EventHandler) OnOrderPaid(handler func(ctx context.Context, event models.OrderPaidEvent) error) {
	eh.paidHandler = handler
}

func (eh *EventHandler) OnOrderCancelled(handler func(ctx context.Context, event models.OrderCancelledEvent) error) {
	eh.cancelledHandler = handler
}

func (eh *EventHandler) OnOrderTaken(handler func(ctx context.Context, event models.OrderTakenEvent) error) {
	eh.takenHandler = handler
}

func (eh *EventHandler) OnOrderCompleted(handler func(ctx context.Context, event models.OrderCompletedEvent) error) {
	eh.completedHandler = handler
}

// HandleMessage decodes the envelope and dispatches on event type.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch base.EventType {
	case models.EventTypeOrderCheckedOut:
		if eh.checkedOutHandler == nil {
			return nil
		}
		var event models.OrderCheckedOutEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal checked out event: %w", err)
		}
		return eh.checkedOutHandler(ctx, event)

	case models.EventTypeOrderPaid:
		if eh.paidHandler == nil {
			return nil
		}
		var event models.OrderPaidEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal paid event: %w", err)
		}
		return eh.paidHandler(ctx, event)

	case models.EventTypeOrderCancelled:
		if eh.cancelledHandler == nil {
			return nil
		}
		var event models.OrderCancelledEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal cancelled event: %w", err)
		}
		return eh.cancelledHandler(ctx, event)

	case models.EventTypeOrderTaken:
		if eh.takenHandler == nil {
			return nil
		}
		var event models.OrderTakenEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal taken event: %w", err)
		}
		return eh.takenHandler(ctx, event)

	case models.EventTypeOrderCompleted:
		if eh.completedHandler == nil {
			return nil
		}
		var event models.OrderCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal completed event: %w", err)
		}
		return eh.completedHandler(ctx, event)
	}

	return nil
}
