package models

import "time"

// Role classifies a user as exactly one of customer, worker or admin.
// It is written once at registration and read everywhere else; there is
// no profile-table probing.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
	RoleUnknown  Role = "unknown"
)

// User is the identity record behind every principal.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Customer profile, 1:1 with a user of role customer.
type Customer struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	Domicile  string `db:"domicile" json:"domicile"`
}

// Worker profile, 1:1 with a user of role worker. Available is cleared
// while the worker holds an in-flight delivery.
type Worker struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	Domicile  string `db:"domicile" json:"domicile"`
	Available bool   `db:"available" json:"available"`
}

// Admin profile, 1:1 with a user of role admin.
type Admin struct {
	ID        int64  `db:"id" json:"id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
}

// Product is a sellable catalog item. Price is in whole rupiah.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"product_name" json:"product_name"`
	Price       int64     `db:"price" json:"price"`
	Stock       int       `db:"stock" json:"stock"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Cart is a customer's working basket. At most one cart per customer
// has is_checked_out=false at any time; checkout flips the flag exactly
// once and the cart is immutable afterwards.
type Cart struct {
	ID           int64     `db:"id" json:"id"`
	CustomerID   int64     `db:"customer_id" json:"customer_id"`
	IsCheckedOut bool      `db:"is_checked_out" json:"is_checked_out"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CartLine is one product/quantity pairing inside a cart.
type CartLine struct {
	ID        int64 `db:"id" json:"id"`
	CartID    int64 `db:"cart_id" json:"cart_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// Order statuses. Transitions are one-directional; cancelled is a side
// branch reachable only from NOT_PAID and PAID.
const (
	OrderStatusNotPaid   = "NOT_PAID"
	OrderStatusPaid      = "PAID"
	OrderStatusPrepared  = "PREPARED"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusReviewed  = "REVIEWED"
	OrderStatusCancelled = "CANCELLED"
)

// orderTransitions is the transition table of the order state machine.
// Payment, take, complete and review run through their own dedicated
// operations; AdvanceOrderStatus only permits the admin hops.
var orderTransitions = map[string][]string{
	OrderStatusNotPaid:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusPrepared, OrderStatusCancelled},
	OrderStatusPrepared:  {OrderStatusReady},
	OrderStatusReady:     {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusCompleted},
	OrderStatusCompleted: {OrderStatusReviewed},
}

// ValidOrderTransition reports whether from → to is a legal hop.
func ValidOrderTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanCancelOrder reports whether an order in the given status may still
// be cancelled by its owner.
func CanCancelOrder(status string) bool {
	return status == OrderStatusNotPaid || status == OrderStatusPaid
}

// Order is a checked-out cart turned into a trackable order. WorkerID
// is set at most once, when a worker takes the order, and never
// reassigned.
type Order struct {
	ID         int64     `db:"id" json:"id"`
	CartID     int64     `db:"cart_id" json:"cart_id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	Total      int64     `db:"total" json:"total"`
	Status     string    `db:"status" json:"status"`
	WorkerID   *int64    `db:"worker_id" json:"worker_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// WalletAccount is a user's PIN-gated stored-value identity. The PIN is
// kept only as a bcrypt hash.
type WalletAccount struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	PINHash       string     `db:"pin_hash" json:"-"`
	LoginAttempts int        `db:"login_attempts" json:"-"`
	LastAttemptAt *time.Time `db:"last_attempt_at" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Wallet is the balance ledger for a wallet account. Saldo is in whole
// rupiah and never negative.
type Wallet struct {
	ID              int64 `db:"id" json:"id"`
	WalletAccountID int64 `db:"wallet_account_id" json:"wallet_account_id"`
	Saldo           int64 `db:"saldo" json:"saldo"`
}

// OrderPayment binds an order to the wallet that paid for it and, once
// assigned, to the worker delivering it.
type OrderPayment struct {
	ID              int64     `db:"id" json:"id"`
	OrderID         int64     `db:"order_id" json:"order_id"`
	WalletAccountID int64     `db:"wallet_account_id" json:"wallet_account_id"`
	WorkerID        *int64    `db:"worker_id" json:"worker_id,omitempty"`
	DeliveryFee     int64     `db:"delivery_fee" json:"delivery_fee"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Review is a customer-authored annotation on a completed order.
// Rating is in [1,5].
type Review struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	OrderID     int64     `db:"order_id" json:"order_id"`
	Description string    `db:"description" json:"description"`
	Rating      int       `db:"rating" json:"rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FraudReport is a customer-authored complaint attached to an order.
type FraudReport struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	OrderID     int64     `db:"order_id" json:"order_id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Testimony is a customer-authored annotation on a product.
type Testimony struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Message   string    `db:"message" json:"message"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OrderAuditRecord is one consumed lifecycle event, persisted by the
// audit worker.
type OrderAuditRecord struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	EventID   string    `db:"event_id" json:"event_id"`
	EventType string    `db:"event_type" json:"event_type"`
	Payload   []byte    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent guards the audit worker against reprocessing.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
