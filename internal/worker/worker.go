package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// AuditStore is the slice of the store the audit worker needs.
type AuditStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
	CreateOrderAuditRecord(ctx context.Context, record *models.OrderAuditRecord) error
}

// AuditWorker consumes order lifecycle events and persists an audit
// trail per order. Events are deduplicated by event ID so redelivery
// is safe.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        AuditStore
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, store AuditStore) *AuditWorker {
	w := &AuditWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		store:        store,
	}

	w.eventHandler.OnOrderCheckedOut(func(ctx context.Context, event models.OrderCheckedOutEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID, event)
	})
	w.eventHandler.OnOrderPaid(func(ctx context.Context, event models.OrderPaidEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID, event)
	})
	w.eventHandler.OnOrderCancelled(func(ctx context.Context, event models.OrderCancelledEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID, event)
	})
	w.eventHandler.OnOrderTaken(func(ctx context.Context, event models.OrderTakenEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID, event)
	})
	w.eventHandler.OnOrderCompleted(func(ctx context.Context, event models.OrderCompletedEvent) error {
		return w.record(ctx, event.BaseEvent, event.OrderID, event)
	})

	return w
}

func (w *AuditWorker) record(ctx context.Context, base models.BaseEvent, orderID int64, event interface{}) error {
	logger := util.GetLogger()

	processed, err := w.store.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("checking event %s: %w", base.EventID, err)
	}
	if processed {
		logger.Debug("skipping already processed event",
			zap.String("event_id", base.EventID),
			zap.String("event_type", base.EventType))
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", base.EventID, err)
	}

	if err := w.store.CreateOrderAuditRecord(ctx, &models.OrderAuditRecord{
		OrderID:   orderID,
		EventID:   base.EventID,
		EventType: base.EventType,
		Payload:   payload,
	}); err != nil {
		return fmt.Errorf("recording event %s: %w", base.EventID, err)
	}

	if err := w.store.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		return fmt.Errorf("marking event %s processed: %w", base.EventID, err)
	}

	logger.Info("recorded order event",
		zap.Int64("order_id", orderID),
		zap.String("event_type", base.EventType))
	return nil
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	return w.consumer.Close()
}
