package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
)

// fakeStore is an in-memory stand-in for the sqlx store. Every method
// holds the mutex for its whole body, mirroring the single-transaction
// semantics of the real store.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64

	users        map[int64]*models.User
	usersByName  map[string]int64
	customers    map[int64]*models.Customer
	workers      map[int64]*models.Worker
	admins       map[int64]*models.Admin
	products     map[int64]*models.Product
	carts        map[int64]*models.Cart
	lines        map[int64]*models.CartLine
	orders       map[int64]*models.Order
	accounts     map[int64]*models.WalletAccount
	wallets      map[int64]*models.Wallet
	payments     map[int64]*models.OrderPayment
	reviews      map[int64]*models.Review
	fraudReports map[int64]*models.FraudReport
	testimonies  map[int64]*models.Testimony
	audit        []models.OrderAuditRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int64]*models.User),
		usersByName:  make(map[string]int64),
		customers:    make(map[int64]*models.Customer),
		workers:      make(map[int64]*models.Worker),
		admins:       make(map[int64]*models.Admin),
		products:     make(map[int64]*models.Product),
		carts:        make(map[int64]*models.Cart),
		lines:        make(map[int64]*models.CartLine),
		orders:       make(map[int64]*models.Order),
		accounts:     make(map[int64]*models.WalletAccount),
		wallets:      make(map[int64]*models.Wallet),
		payments:     make(map[int64]*models.OrderPayment),
		reviews:      make(map[int64]*models.Review),
		fraudReports: make(map[int64]*models.FraudReport),
		testimonies:  make(map[int64]*models.Testimony),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// UserStore

func (f *fakeStore) CreateUserWithCustomerTx(_ context.Context, user *models.User, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.usersByName[user.Username]; ok {
		return fmt.Errorf("username %s: %w", user.Username, models.ErrAlreadyExists)
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	f.usersByName[user.Username] = user.ID
	customer.ID = f.id()
	customer.UserID = user.ID
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeStore) CreateUserWithWorkerTx(_ context.Context, user *models.User, worker *models.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.usersByName[user.Username]; ok {
		return fmt.Errorf("username %s: %w", user.Username, models.ErrAlreadyExists)
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	f.usersByName[user.Username] = user.ID
	worker.ID = f.id()
	worker.UserID = user.ID
	f.workers[worker.ID] = worker
	return nil
}

func (f *fakeStore) CreateUserWithAdminTx(_ context.Context, user *models.User, admin *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.usersByName[user.Username]; ok {
		return fmt.Errorf("username %s: %w", user.Username, models.ErrAlreadyExists)
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	f.usersByName[user.Username] = user.ID
	admin.ID = f.id()
	admin.UserID = user.ID
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.usersByName[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
	}
	return f.users[id], nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	return user, nil
}

func (f *fakeStore) RoleOf(_ context.Context, userID int64) (models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return models.RoleUnknown, nil
	}
	return user.Role, nil
}

func (f *fakeStore) GetCustomerByUserID(_ context.Context, userID int64) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("customer for user %d: %w", userID, models.ErrNotFound)
}

func (f *fakeStore) GetWorkerByUserID(_ context.Context, userID int64) (*models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.workers {
		if w.UserID == userID {
			return w, nil
		}
	}
	return nil, fmt.Errorf("worker for user %d: %w", userID, models.ErrNotFound)
}

func (f *fakeStore) GetWorkerByID(_ context.Context, id int64) (*models.Worker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	worker, ok := f.workers[id]
	if !ok {
		return nil, fmt.Errorf("worker %d: %w", id, models.ErrNotFound)
	}
	return worker, nil
}

func (f *fakeStore) UpdateWorkerProfile(_ context.Context, worker *models.Worker) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workers[worker.ID]; !ok {
		return fmt.Errorf("worker %d: %w", worker.ID, models.ErrNotFound)
	}
	f.workers[worker.ID] = worker
	return nil
}

// ProductStore

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productLocked(id)
}

func (f *fakeStore) productLocked(id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return product, nil
}

func (f *fakeStore) GetProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = f.id()
	product.CreatedAt = time.Now()
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, models.ErrNotFound)
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	delete(f.products, id)
	return nil
}

// CartStore

func (f *fakeStore) openCartLocked(customerID int64) *models.Cart {
	for _, c := range f.carts {
		if c.CustomerID == customerID && !c.IsCheckedOut {
			return c
		}
	}
	return nil
}

func (f *fakeStore) GetOpenCartByCustomer(_ context.Context, customerID int64) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart := f.openCartLocked(customerID); cart != nil {
		return cart, nil
	}
	return nil, fmt.Errorf("open cart for customer %d: %w", customerID, models.ErrNotFound)
}

func (f *fakeStore) GetCartByID(_ context.Context, id int64) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart %d: %w", id, models.ErrNotFound)
	}
	return cart, nil
}

func (f *fakeStore) cartLinesLocked(cartID int64) []store.CartLineDetail {
	var out []store.CartLineDetail
	for _, line := range f.lines {
		if line.CartID != cartID {
			continue
		}
		product := f.products[line.ProductID]
		out = append(out, store.CartLineDetail{
			ID:       line.ID,
			Quantity: line.Quantity,
			Product:  *product,
		})
	}
	return out
}

func (f *fakeStore) GetCartLines(_ context.Context, cartID int64) ([]store.CartLineDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cartLinesLocked(cartID), nil
}

func (f *fakeStore) GetCartLineByID(_ context.Context, id int64) (*models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line, ok := f.lines[id]
	if !ok {
		return nil, fmt.Errorf("cart line %d: %w", id, models.ErrNotFound)
	}
	return line, nil
}

func (f *fakeStore) AddCartLineTx(_ context.Context, customerID, productID int64, amount int) (*models.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, err := f.productLocked(productID)
	if err != nil {
		return nil, err
	}

	cart := f.openCartLocked(customerID)
	if cart == nil {
		cart = &models.Cart{ID: f.id(), CustomerID: customerID, CreatedAt: time.Now()}
		f.carts[cart.ID] = cart
	}

	var line *models.CartLine
	for _, l := range f.lines {
		if l.CartID == cart.ID && l.ProductID == productID {
			line = l
			break
		}
	}

	newQuantity := amount
	if line != nil {
		newQuantity += line.Quantity
	}
	if newQuantity > product.Stock {
		return nil, fmt.Errorf("product %d has stock %d: %w", productID, product.Stock, models.ErrOutOfStock)
	}

	if line == nil {
		line = &models.CartLine{ID: f.id(), CartID: cart.ID, ProductID: productID}
		f.lines[line.ID] = line
	}
	line.Quantity = newQuantity
	return line, nil
}

func (f *fakeStore) UpdateCartLineQuantityTx(_ context.Context, lineID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[lineID]
	if !ok {
		return fmt.Errorf("cart line %d: %w", lineID, models.ErrNotFound)
	}
	if quantity == 0 {
		delete(f.lines, lineID)
		return nil
	}
	product, err := f.productLocked(line.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return fmt.Errorf("product %d has stock %d: %w", line.ProductID, product.Stock, models.ErrOutOfStock)
	}
	line.Quantity = quantity
	return nil
}

func (f *fakeStore) DeleteCartLine(_ context.Context, lineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lines[lineID]; !ok {
		return fmt.Errorf("cart line %d: %w", lineID, models.ErrNotFound)
	}
	delete(f.lines, lineID)
	return nil
}

func (f *fakeStore) DeleteCart(_ context.Context, cartID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.carts[cartID]; !ok {
		return fmt.Errorf("cart %d: %w", cartID, models.ErrNotFound)
	}
	for id, line := range f.lines {
		if line.CartID == cartID {
			delete(f.lines, id)
		}
	}
	delete(f.carts, cartID)
	return nil
}

func (f *fakeStore) CheckoutCartTx(_ context.Context, cartID int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart, ok := f.carts[cartID]
	if !ok {
		return nil, fmt.Errorf("cart %d: %w", cartID, models.ErrNotFound)
	}
	if cart.IsCheckedOut {
		return nil, fmt.Errorf("cart %d already checked out: %w", cartID, models.ErrConflict)
	}

	var total int64
	var n int
	for _, line := range f.lines {
		if line.CartID != cartID {
			continue
		}
		total += f.products[line.ProductID].Price * int64(line.Quantity)
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("cart %d is empty: %w", cartID, models.ErrValidation)
	}

	cart.IsCheckedOut = true
	order := &models.Order{
		ID:         f.id(),
		CartID:     cartID,
		CustomerID: cart.CustomerID,
		Total:      total,
		Status:     models.OrderStatusNotPaid,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.orders[order.ID] = order
	return order, nil
}

// OrderStore

func (f *fakeStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	return order, nil
}

func (f *fakeStore) GetOrdersByCustomer(_ context.Context, customerID int64, status string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.CustomerID != customerID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) CountOrdersByStatus(_ context.Context, customerID int64) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			counts[o.Status]++
		}
	}
	return counts, nil
}

func (f *fakeStore) GetOrdersByWorker(_ context.Context, workerID int64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.WorkerID != nil && *o.WorkerID == workerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAllOrders(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) GetAvailableOrders(_ context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == models.OrderStatusReady && o.WorkerID == nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOrderPaymentByOrderID(_ context.Context, orderID int64) (*models.OrderPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[orderID]
	if !ok {
		return nil, fmt.Errorf("payment for order %d: %w", orderID, models.ErrNotFound)
	}
	return payment, nil
}

func (f *fakeStore) PayOrderTx(_ context.Context, orderID, walletAccountID, deliveryFee int64) (*models.OrderPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if order.Status != models.OrderStatusNotPaid {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	wallet, ok := f.wallets[walletAccountID]
	if !ok {
		return nil, fmt.Errorf("wallet for account %d: %w", walletAccountID, models.ErrNotFound)
	}
	if wallet.Saldo < order.Total {
		return nil, fmt.Errorf("saldo %d below total %d: %w", wallet.Saldo, order.Total, models.ErrInsufficientFunds)
	}

	for _, line := range f.lines {
		if line.CartID != order.CartID {
			continue
		}
		product := f.products[line.ProductID]
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("product %d has stock %d: %w", line.ProductID, product.Stock, models.ErrOutOfStock)
		}
	}
	for _, line := range f.lines {
		if line.CartID == order.CartID {
			f.products[line.ProductID].Stock -= line.Quantity
		}
	}

	wallet.Saldo -= order.Total
	order.Status = models.OrderStatusPaid
	payment := &models.OrderPayment{
		ID:              f.id(),
		OrderID:         orderID,
		WalletAccountID: walletAccountID,
		DeliveryFee:     deliveryFee,
		CreatedAt:       time.Now(),
	}
	f.payments[orderID] = payment
	return payment, nil
}

func (f *fakeStore) CancelOrderTx(_ context.Context, orderID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return 0, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if !models.CanCancelOrder(order.Status) {
		return 0, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	var refund int64
	if order.Status == models.OrderStatusPaid {
		for _, line := range f.lines {
			if line.CartID == order.CartID {
				f.products[line.ProductID].Stock += line.Quantity
			}
		}
		payment := f.payments[orderID]
		f.wallets[payment.WalletAccountID].Saldo += order.Total
		refund = order.Total
	}
	order.Status = models.OrderStatusCancelled
	return refund, nil
}

func (f *fakeStore) TakeOrderTx(_ context.Context, orderID, workerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if order.Status != models.OrderStatusReady {
		return fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}
	if order.WorkerID != nil {
		return fmt.Errorf("order %d already taken: %w", orderID, models.ErrConflict)
	}

	w := workerID
	order.WorkerID = &w
	order.Status = models.OrderStatusDelivered
	if payment, ok := f.payments[orderID]; ok {
		payment.WorkerID = &w
	}
	if worker, ok := f.workers[workerID]; ok {
		worker.Available = false
	}
	return nil
}

func (f *fakeStore) CompleteOrderTx(_ context.Context, orderID, workerID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return 0, fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if order.Status != models.OrderStatusDelivered {
		return 0, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}
	payment := f.payments[orderID]
	if payment == nil || payment.WorkerID == nil || *payment.WorkerID != workerID {
		return 0, fmt.Errorf("order %d belongs to another worker: %w", orderID, models.ErrForbidden)
	}

	worker := f.workers[workerID]
	var credited bool
	for _, account := range f.accounts {
		if account.UserID == worker.UserID {
			f.wallets[account.ID].Saldo += payment.DeliveryFee
			credited = true
			break
		}
	}
	if !credited {
		return 0, fmt.Errorf("wallet for worker %d: %w", workerID, models.ErrNotFound)
	}

	order.Status = models.OrderStatusCompleted
	worker.Available = true
	return payment.DeliveryFee, nil
}

func (f *fakeStore) AdvanceOrderStatusTx(_ context.Context, orderID int64, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	if !models.ValidOrderTransition(order.Status, to) {
		return fmt.Errorf("order %d: %s -> %s: %w", orderID, order.Status, to, models.ErrConflict)
	}
	order.Status = to
	return nil
}

func (f *fakeStore) GetOrderAuditTrail(_ context.Context, orderID int64) ([]models.OrderAuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderAuditRecord
	for _, r := range f.audit {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

// WalletStore

func (f *fakeStore) CreateWalletTx(_ context.Context, userID int64, pinHash string) (*models.WalletAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.UserID == userID {
			return nil, fmt.Errorf("wallet for user %d: %w", userID, models.ErrAlreadyExists)
		}
	}
	account := &models.WalletAccount{ID: f.id(), UserID: userID, PINHash: pinHash, CreatedAt: time.Now()}
	f.accounts[account.ID] = account
	f.wallets[account.ID] = &models.Wallet{ID: f.id(), WalletAccountID: account.ID}
	return account, nil
}

func (f *fakeStore) GetWalletAccountByUserID(_ context.Context, userID int64) (*models.WalletAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.UserID == userID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("wallet for user %d: %w", userID, models.ErrNotFound)
}

func (f *fakeStore) GetWalletAccountByID(_ context.Context, id int64) (*models.WalletAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, fmt.Errorf("wallet account %d: %w", id, models.ErrNotFound)
	}
	return account, nil
}

func (f *fakeStore) GetWalletByAccountID(_ context.Context, accountID int64) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wallet, ok := f.wallets[accountID]
	if !ok {
		return nil, fmt.Errorf("wallet for account %d: %w", accountID, models.ErrNotFound)
	}
	return wallet, nil
}

func (f *fakeStore) RecordPINAttempt(_ context.Context, accountID int64, attempts int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return fmt.Errorf("wallet account %d: %w", accountID, models.ErrNotFound)
	}
	account.LoginAttempts = attempts
	account.LastAttemptAt = &at
	return nil
}

func (f *fakeStore) ResetPINAttempts(_ context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return fmt.Errorf("wallet account %d: %w", accountID, models.ErrNotFound)
	}
	account.LoginAttempts = 0
	account.LastAttemptAt = nil
	return nil
}

func (f *fakeStore) CreditWalletTx(_ context.Context, accountID, amount int64) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wallet, ok := f.wallets[accountID]
	if !ok {
		return nil, fmt.Errorf("wallet for account %d: %w", accountID, models.ErrNotFound)
	}
	wallet.Saldo += amount
	return wallet, nil
}

// ReviewStore

func (f *fakeStore) CreateReviewTx(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = f.id()
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = review
	if order, ok := f.orders[review.OrderID]; ok && order.Status == models.OrderStatusCompleted {
		order.Status = models.OrderStatusReviewed
	}
	return nil
}

func (f *fakeStore) GetReviewByID(_ context.Context, id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	review, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	return review, nil
}

func (f *fakeStore) GetReviewsByUser(_ context.Context, userID int64) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateReview(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[review.ID]; !ok {
		return fmt.Errorf("review %d: %w", review.ID, models.ErrNotFound)
	}
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeStore) DeleteReview(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeStore) CreateFraudReport(_ context.Context, report *models.FraudReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	report.ID = f.id()
	report.CreatedAt = time.Now()
	f.fraudReports[report.ID] = report
	return nil
}

func (f *fakeStore) GetFraudReportByID(_ context.Context, id int64) (*models.FraudReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.fraudReports[id]
	if !ok {
		return nil, fmt.Errorf("fraud report %d: %w", id, models.ErrNotFound)
	}
	return report, nil
}

func (f *fakeStore) GetFraudReportsByUser(_ context.Context, userID int64) ([]models.FraudReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.FraudReport
	for _, r := range f.fraudReports {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateFraudReport(_ context.Context, report *models.FraudReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fraudReports[report.ID]; !ok {
		return fmt.Errorf("fraud report %d: %w", report.ID, models.ErrNotFound)
	}
	f.fraudReports[report.ID] = report
	return nil
}

func (f *fakeStore) DeleteFraudReport(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fraudReports[id]; !ok {
		return fmt.Errorf("fraud report %d: %w", id, models.ErrNotFound)
	}
	delete(f.fraudReports, id)
	return nil
}

func (f *fakeStore) CreateTestimony(_ context.Context, testimony *models.Testimony) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	testimony.ID = f.id()
	testimony.CreatedAt = time.Now()
	f.testimonies[testimony.ID] = testimony
	return nil
}

func (f *fakeStore) GetTestimonyByID(_ context.Context, id int64) (*models.Testimony, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	testimony, ok := f.testimonies[id]
	if !ok {
		return nil, fmt.Errorf("testimony %d: %w", id, models.ErrNotFound)
	}
	return testimony, nil
}

func (f *fakeStore) GetTestimoniesByProduct(_ context.Context, productID int64) ([]models.Testimony, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Testimony
	for _, t := range f.testimonies {
		if t.ProductID == productID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTestimoniesByUser(_ context.Context, userID int64) ([]models.Testimony, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Testimony
	for _, t := range f.testimonies {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTestimony(_ context.Context, testimony *models.Testimony) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.testimonies[testimony.ID]; !ok {
		return fmt.Errorf("testimony %d: %w", testimony.ID, models.ErrNotFound)
	}
	f.testimonies[testimony.ID] = testimony
	return nil
}

func (f *fakeStore) DeleteTestimony(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.testimonies[id]; !ok {
		return fmt.Errorf("testimony %d: %w", id, models.ErrNotFound)
	}
	delete(f.testimonies, id)
	return nil
}

// fakeSessions is an in-memory wallet session store.
type fakeSessions struct {
	mu       sync.Mutex
	byToken  map[string]int64
	byAcct   map[int64]string
	expireAt map[string]time.Time
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		byToken:  make(map[string]int64),
		byAcct:   make(map[int64]string),
		expireAt: make(map[string]time.Time),
	}
}

func (s *fakeSessions) CreateWalletSession(_ context.Context, accountID int64, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.byAcct[accountID]; ok {
		delete(s.byToken, prev)
		delete(s.expireAt, prev)
	}
	token := uuid.New().String()
	s.byToken[token] = accountID
	s.byAcct[accountID] = token
	s.expireAt[token] = time.Now().Add(ttl)
	return token, nil
}

func (s *fakeSessions) GetWalletSession(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accountID, ok := s.byToken[token]
	if !ok || time.Now().After(s.expireAt[token]) {
		return 0, fmt.Errorf("wallet session: %w", models.ErrSessionExpired)
	}
	return accountID, nil
}

func (s *fakeSessions) RevokeWalletSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if accountID, ok := s.byToken[token]; ok {
		delete(s.byAcct, accountID)
	}
	delete(s.byToken, token)
	delete(s.expireAt, token)
	return nil
}

// fakePublisher records published event types.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) publish(eventType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func (p *fakePublisher) PublishOrderCheckedOut(context.Context, *models.Order) error {
	return p.publish(models.EventTypeOrderCheckedOut)
}

func (p *fakePublisher) PublishOrderPaid(context.Context, *models.Order, int64, int64) error {
	return p.publish(models.EventTypeOrderPaid)
}

func (p *fakePublisher) PublishOrderCancelled(context.Context, *models.Order, int64) error {
	return p.publish(models.EventTypeOrderCancelled)
}

func (p *fakePublisher) PublishOrderTaken(context.Context, *models.Order, int64) error {
	return p.publish(models.EventTypeOrderTaken)
}

func (p *fakePublisher) PublishOrderCompleted(context.Context, *models.Order, int64, int64) error {
	return p.publish(models.EventTypeOrderCompleted)
}
