package models

import "time"

// Event types published on every order lifecycle mutation.
const (
	EventTypeOrderCheckedOut = "ORDER_CHECKED_OUT"
	EventTypeOrderPaid       = "ORDER_PAID"
	EventTypeOrderCancelled  = "ORDER_CANCELLED"
	EventTypeOrderTaken      = "ORDER_TAKEN"
	EventTypeOrderCompleted  = "ORDER_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCheckedOutEvent published when a cart is frozen into an order
type OrderCheckedOutEvent struct {
	BaseEvent
	OrderID    int64 `json:"order_id"`
	CartID     int64 `json:"cart_id"`
	CustomerID int64 `json:"customer_id"`
	Total      int64 `json:"total"`
}

// OrderPaidEvent published when a wallet payment succeeds
type OrderPaidEvent struct {
	BaseEvent
	OrderID         int64 `json:"order_id"`
	WalletAccountID int64 `json:"wallet_account_id"`
	Amount          int64 `json:"amount"`
	DeliveryFee     int64 `json:"delivery_fee"`
}

// OrderCancelledEvent published when the owner cancels an order; Refund
// is zero for orders cancelled before payment
type OrderCancelledEvent struct {
	BaseEvent
	OrderID int64 `json:"order_id"`
	Refund  int64 `json:"refund"`
}

// OrderTakenEvent published when a worker binds to an order
type OrderTakenEvent struct {
	BaseEvent
	OrderID  int64 `json:"order_id"`
	WorkerID int64 `json:"worker_id"`
}

// OrderCompletedEvent published when the bound worker completes the
// delivery and the fee is credited
type OrderCompletedEvent struct {
	BaseEvent
	OrderID     int64 `json:"order_id"`
	WorkerID    int64 `json:"worker_id"`
	DeliveryFee int64 `json:"delivery_fee"`
}
