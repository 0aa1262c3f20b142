package service

import (
	"context"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
)

// The services depend on narrow slices of the store so tests can swap
// in in-memory fakes.

type UserStore interface {
	CreateUserWithCustomerTx(ctx context.Context, user *models.User, customer *models.Customer) error
	CreateUserWithWorkerTx(ctx context.Context, user *models.User, worker *models.Worker) error
	CreateUserWithAdminTx(ctx context.Context, user *models.User, admin *models.Admin) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	RoleOf(ctx context.Context, userID int64) (models.Role, error)
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	GetWorkerByUserID(ctx context.Context, userID int64) (*models.Worker, error)
	UpdateWorkerProfile(ctx context.Context, worker *models.Worker) error
}

type ProductStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type CartStore interface {
	GetOpenCartByCustomer(ctx context.Context, customerID int64) (*models.Cart, error)
	GetCartByID(ctx context.Context, id int64) (*models.Cart, error)
	GetCartLines(ctx context.Context, cartID int64) ([]store.CartLineDetail, error)
	GetCartLineByID(ctx context.Context, id int64) (*models.CartLine, error)
	AddCartLineTx(ctx context.Context, customerID, productID int64, amount int) (*models.CartLine, error)
	UpdateCartLineQuantityTx(ctx context.Context, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, lineID int64) error
	DeleteCart(ctx context.Context, cartID int64) error
	CheckoutCartTx(ctx context.Context, cartID int64) (*models.Order, error)
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
}

type OrderStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrdersByCustomer(ctx context.Context, customerID int64, status string) ([]models.Order, error)
	CountOrdersByStatus(ctx context.Context, customerID int64) (map[string]int, error)
	GetOrdersByWorker(ctx context.Context, workerID int64) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetAvailableOrders(ctx context.Context) ([]models.Order, error)
	GetOrderPaymentByOrderID(ctx context.Context, orderID int64) (*models.OrderPayment, error)
	GetCartLines(ctx context.Context, cartID int64) ([]store.CartLineDetail, error)
	PayOrderTx(ctx context.Context, orderID, walletAccountID, deliveryFee int64) (*models.OrderPayment, error)
	CancelOrderTx(ctx context.Context, orderID int64) (int64, error)
	TakeOrderTx(ctx context.Context, orderID, workerID int64) error
	CompleteOrderTx(ctx context.Context, orderID, workerID int64) (int64, error)
	AdvanceOrderStatusTx(ctx context.Context, orderID int64, to string) error
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	GetWorkerByUserID(ctx context.Context, userID int64) (*models.Worker, error)
	GetWorkerByID(ctx context.Context, id int64) (*models.Worker, error)
	GetOrderAuditTrail(ctx context.Context, orderID int64) ([]models.OrderAuditRecord, error)
}

type WalletStore interface {
	CreateWalletTx(ctx context.Context, userID int64, pinHash string) (*models.WalletAccount, error)
	GetWalletAccountByUserID(ctx context.Context, userID int64) (*models.WalletAccount, error)
	GetWalletAccountByID(ctx context.Context, id int64) (*models.WalletAccount, error)
	GetWalletByAccountID(ctx context.Context, accountID int64) (*models.Wallet, error)
	RecordPINAttempt(ctx context.Context, accountID int64, attempts int, at time.Time) error
	ResetPINAttempts(ctx context.Context, accountID int64) error
	CreditWalletTx(ctx context.Context, accountID, amount int64) (*models.Wallet, error)
}

type ReviewStore interface {
	CreateReviewTx(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	GetReviewsByUser(ctx context.Context, userID int64) ([]models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	CreateFraudReport(ctx context.Context, report *models.FraudReport) error
	GetFraudReportByID(ctx context.Context, id int64) (*models.FraudReport, error)
	GetFraudReportsByUser(ctx context.Context, userID int64) ([]models.FraudReport, error)
	UpdateFraudReport(ctx context.Context, report *models.FraudReport) error
	DeleteFraudReport(ctx context.Context, id int64) error
	CreateTestimony(ctx context.Context, testimony *models.Testimony) error
	GetTestimonyByID(ctx context.Context, id int64) (*models.Testimony, error)
	GetTestimoniesByProduct(ctx context.Context, productID int64) ([]models.Testimony, error)
	GetTestimoniesByUser(ctx context.Context, userID int64) ([]models.Testimony, error)
	UpdateTestimony(ctx context.Context, testimony *models.Testimony) error
	DeleteTestimony(ctx context.Context, id int64) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// SessionStore is the wallet session token store backed by Redis.
type SessionStore interface {
	CreateWalletSession(ctx context.Context, accountID int64, ttl time.Duration) (string, error)
	GetWalletSession(ctx context.Context, token string) (int64, error)
	RevokeWalletSession(ctx context.Context, token string) error
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCheckedOut(ctx context.Context, order *models.Order) error
	PublishOrderPaid(ctx context.Context, order *models.Order, walletAccountID, deliveryFee int64) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, refund int64) error
	PublishOrderTaken(ctx context.Context, order *models.Order, workerID int64) error
	PublishOrderCompleted(ctx context.Context, order *models.Order, workerID, deliveryFee int64) error
}
