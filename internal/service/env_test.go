package service

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/models"
)

const (
	testPIN         = "123456"
	testDeliveryFee = int64(5000)
)

type testEnv struct {
	store    *fakeStore
	sessions *fakeSessions
	pub      *fakePublisher

	auth    *AuthService
	catalog *CatalogService
	cart    *CartService
	orders  *OrderService
	wallet  *WalletService
	reviews *ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := newFakeStore()
	sessions := newFakeSessions()
	pub := &fakePublisher{}

	return &testEnv{
		store:    fs,
		sessions: sessions,
		pub:      pub,
		auth:     NewAuthService(fs, []byte("test-secret"), time.Hour),
		catalog:  NewCatalogService(fs),
		cart:     NewCartService(fs, pub),
		orders:   NewOrderService(fs, pub),
		wallet: NewWalletService(fs, fs, sessions, pub, WalletServiceConfig{
			MaxPINAttempts: 3,
			LockoutWindow:  10 * time.Minute,
			SessionTTL:     10 * time.Minute,
			DeliveryFee:    testDeliveryFee,
		}),
		reviews: NewReviewService(fs),
	}
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:  gofakeit.Username(),
		Password:  "correct-horse-battery",
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		Domicile:  "Jakarta Selatan",
	}
}

func (e *testEnv) seedCustomer(t *testing.T) int64 {
	t.Helper()
	user, err := e.auth.RegisterCustomer(context.Background(), registerRequest())
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) seedWorker(t *testing.T) int64 {
	t.Helper()
	user, err := e.auth.RegisterWorker(context.Background(), registerRequest())
	require.NoError(t, err)
	return user.ID
}

func (e *testEnv) seedProduct(t *testing.T, price int64, stock int) int64 {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), &ProductRequest{
		Name:  gofakeit.ProductName(),
		Price: price,
		Stock: stock,
	})
	require.NoError(t, err)
	return product.ID
}

// seedWallet opens a wallet for the user, tops it up and returns an
// active session token.
func (e *testEnv) seedWallet(t *testing.T, userID, saldo int64) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.wallet.Register(ctx, userID, testPIN)
	require.NoError(t, err)
	session, err := e.wallet.Authenticate(ctx, userID, testPIN)
	require.NoError(t, err)
	if saldo > 0 {
		_, err = e.wallet.TopUp(ctx, userID, session.Token, saldo)
		require.NoError(t, err)
	}
	return session.Token
}

// seedPaidOrder drives a fresh customer through add-to-cart, checkout
// and payment, returning the order plus the wallet session token.
func (e *testEnv) seedPaidOrder(t *testing.T, userID, productID int64, quantity int, saldo int64) (*models.Order, string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: quantity})
	require.NoError(t, err)
	order, err := e.cart.Checkout(ctx, userID)
	require.NoError(t, err)

	token := e.seedWallet(t, userID, saldo)
	_, err = e.wallet.PayOrder(ctx, userID, token, testPIN, order.ID)
	require.NoError(t, err)
	return order, token
}

// seedReadyOrder pays an order and walks it through the admin hops to
// READY.
func (e *testEnv) seedReadyOrder(t *testing.T, userID, productID int64, quantity int, saldo int64) *models.Order {
	t.Helper()
	ctx := context.Background()

	order, _ := e.seedPaidOrder(t, userID, productID, quantity, saldo)
	require.NoError(t, e.orders.Advance(ctx, order.ID, models.OrderStatusPrepared))
	require.NoError(t, e.orders.Advance(ctx, order.ID, models.OrderStatusReady))
	return order
}
