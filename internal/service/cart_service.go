package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
)

// CartService handles the customer's working basket
type CartService struct {
	store          CartStore
	eventPublisher OrderEventPublisher
	logger         *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(cartStore CartStore, eventPublisher OrderEventPublisher) *CartService {
	return &CartService{
		store:          cartStore,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// AddLineRequest adds a product to the cart
type AddLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Amount    int   `json:"amount" binding:"required,min=1"`
}

// EditLineRequest replaces a line's quantity; zero removes the line
type EditLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ProductView is a product embedded in a cart line. The keys carry the
// product_ prefix to keep them distinct from the line's own fields.
type ProductView struct {
	ID          int64  `json:"product_id"`
	Name        string `json:"product_name"`
	Stock       int    `json:"product_stock"`
	Price       int64  `json:"product_price"`
	Description string `json:"product_description"`
}

// CartLineView is a cart line joined with its product
type CartLineView struct {
	ID       int64       `json:"id"`
	Quantity int         `json:"quantity"`
	Product  ProductView `json:"product"`
}

func lineViews(lines []store.CartLineDetail) []CartLineView {
	views := make([]CartLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, CartLineView{
			ID:       line.ID,
			Quantity: line.Quantity,
			Product: ProductView{
				ID:          line.Product.ID,
				Name:        line.Product.Name,
				Stock:       line.Product.Stock,
				Price:       line.Product.Price,
				Description: line.Product.Description,
			},
		})
	}
	return views
}

// CartView is the cart with its lines and the computed total
type CartView struct {
	Cart         *models.Cart   `json:"cart"`
	ProductCarts []CartLineView `json:"product_carts"`
	Total        int64          `json:"total"`
}

func (s *CartService) customerID(ctx context.Context, userID int64) (int64, error) {
	customer, err := s.store.GetCustomerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("user %d has no customer profile: %w", userID, models.ErrForbidden)
		}
		return 0, err
	}
	return customer.ID, nil
}

// ViewCart returns the customer's open cart with lines and total. A
// customer with no open cart gets an empty view.
func (s *CartService) ViewCart(ctx context.Context, userID int64) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.ViewCart")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.GetOpenCartByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &CartView{ProductCarts: []CartLineView{}}, nil
		}
		return nil, err
	}

	lines, err := s.store.GetCartLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, line := range lines {
		total += line.Product.Price * int64(line.Quantity)
	}
	return &CartView{Cart: cart, ProductCarts: lineViews(lines), Total: total}, nil
}

// AddLine adds a quantity of a product to the customer's open cart,
// creating the cart if needed. Adding an already present product
// increases its quantity.
func (s *CartService) AddLine(ctx context.Context, userID int64, req *AddLineRequest) (*models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddLine")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	line, err := s.store.AddCartLineTx(ctx, customerID, req.ProductID, req.Amount)
	if err != nil {
		return nil, err
	}

	util.CartLinesAddedTotal.Inc()
	s.logger.Info("added cart line",
		zap.Int64("customer_id", customerID),
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

// verifyLineOwner checks the line belongs to the customer's own open
// cart.
func (s *CartService) verifyLineOwner(ctx context.Context, userID, lineID int64) (*models.CartLine, error) {
	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, err := s.store.GetCartLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.GetCartByID(ctx, line.CartID)
	if err != nil {
		return nil, err
	}
	if cart.CustomerID != customerID {
		return nil, fmt.Errorf("cart line %d: %w", lineID, models.ErrForbidden)
	}
	if cart.IsCheckedOut {
		return nil, fmt.Errorf("cart %d already checked out: %w", cart.ID, models.ErrConflict)
	}
	return line, nil
}

// EditLine sets a line's quantity. Quantity zero removes the line.
func (s *CartService) EditLine(ctx context.Context, userID, lineID int64, req *EditLineRequest) error {
	ctx, span := util.StartSpan(ctx, "CartService.EditLine")
	defer span.End()

	if _, err := s.verifyLineOwner(ctx, userID, lineID); err != nil {
		return err
	}
	return s.store.UpdateCartLineQuantityTx(ctx, lineID, req.Quantity)
}

// RemoveLine deletes one line from the cart
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveLine")
	defer span.End()

	if _, err := s.verifyLineOwner(ctx, userID, lineID); err != nil {
		return err
	}
	return s.store.DeleteCartLine(ctx, lineID)
}

// RemoveCart deletes the customer's open cart with all its lines
func (s *CartService) RemoveCart(ctx context.Context, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveCart")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return err
	}
	cart, err := s.store.GetOpenCartByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return s.store.DeleteCart(ctx, cart.ID)
}

// Checkout freezes the open cart into a NOT_PAID order with a
// server-computed total.
func (s *CartService) Checkout(ctx context.Context, userID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Checkout")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart, err := s.store.GetOpenCartByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.CheckoutCartTx(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	util.OrdersCheckedOutTotal.Inc()
	if err := s.eventPublisher.PublishOrderCheckedOut(ctx, order); err != nil {
		s.logger.Error("failed to publish checked out event",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}

	s.logger.Info("cart checked out",
		zap.Int64("cart_id", cart.ID),
		zap.Int64("order_id", order.ID),
		zap.Int64("total", order.Total))
	return order, nil
}
