package store

import (
	"context"

	"marketplace-service/internal/models"
)

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// CreateOrderAuditRecord appends one consumed lifecycle event to the
// order audit trail
func (s *Store) CreateOrderAuditRecord(ctx context.Context, record *models.OrderAuditRecord) error {
	err := s.db.GetContext(ctx, &record.ID, `
		INSERT INTO order_events (order_id, event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, record.OrderID, record.EventID, record.EventType, record.Payload)
	return convertErr(err, "recording event %s for order %d", record.EventID, record.OrderID)
}

// GetOrderAuditTrail retrieves the recorded events of an order
func (s *Store) GetOrderAuditTrail(ctx context.Context, orderID int64) ([]models.OrderAuditRecord, error) {
	var records []models.OrderAuditRecord
	err := s.db.SelectContext(ctx, &records,
		"SELECT * FROM order_events WHERE order_id = $1 ORDER BY created_at", orderID)
	return records, err
}
