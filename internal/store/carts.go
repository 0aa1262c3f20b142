package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-service/internal/models"
)

// CartLineDetail is a cart line joined with its product, the shape the
// cart and order detail views render.
type CartLineDetail struct {
	ID       int64          `db:"id" json:"id"`
	Quantity int            `db:"quantity" json:"quantity"`
	Product  models.Product `db:"product" json:"product"`
}

// GetOpenCartByCustomer returns the customer's single open cart, or
// ErrNotFound when none exists yet.
func (s *Store) GetOpenCartByCustomer(ctx context.Context, customerID int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart,
		"SELECT * FROM carts WHERE customer_id = $1 AND is_checked_out = FALSE", customerID)
	if err != nil {
		return nil, convertErr(err, "open cart for customer %d", customerID)
	}
	return &cart, nil
}

// GetCartByID retrieves a cart by ID
func (s *Store) GetCartByID(ctx context.Context, id int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart, "SELECT * FROM carts WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "cart %d", id)
	}
	return &cart, nil
}

// GetCartLines retrieves the lines of a cart joined with products
func (s *Store) GetCartLines(ctx context.Context, cartID int64) ([]CartLineDetail, error) {
	var lines []CartLineDetail
	err := s.db.SelectContext(ctx, &lines, `
		SELECT cl.id, cl.quantity,
		       p.id AS "product.id", p.product_name AS "product.product_name",
		       p.price AS "product.price", p.stock AS "product.stock",
		       p.description AS "product.description", p.created_at AS "product.created_at"
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1
		ORDER BY cl.id`, cartID)
	return lines, err
}

// GetCartLineByID retrieves a single cart line
func (s *Store) GetCartLineByID(ctx context.Context, id int64) (*models.CartLine, error) {
	var line models.CartLine
	err := s.db.GetContext(ctx, &line, "SELECT * FROM cart_lines WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "cart line %d", id)
	}
	return &line, nil
}

// AddCartLineTx adds amount units of a product to the customer's open
// cart, creating the cart and the line as needed. The resulting
// quantity must not exceed current stock; stock itself is untouched
// until payment.
func (s *Store) AddCartLineTx(ctx context.Context, customerID, productID int64, amount int) (*models.CartLine, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var product models.Product
	if err := tx.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", productID); err != nil {
		return nil, convertErr(err, "product %d", productID)
	}

	var cart models.Cart
	err = tx.GetContext(ctx, &cart,
		"SELECT * FROM carts WHERE customer_id = $1 AND is_checked_out = FALSE FOR UPDATE", customerID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &cart, `
			INSERT INTO carts (customer_id) VALUES ($1)
			RETURNING id, customer_id, is_checked_out, created_at`, customerID)
	}
	if err != nil {
		return nil, convertErr(err, "open cart for customer %d", customerID)
	}

	var line models.CartLine
	err = tx.GetContext(ctx, &line,
		"SELECT * FROM cart_lines WHERE cart_id = $1 AND product_id = $2 FOR UPDATE", cart.ID, productID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart line lookup: %w", err)
	}

	newQuantity := line.Quantity + amount
	if newQuantity > product.Stock {
		return nil, fmt.Errorf("product %d, requested %d of %d in stock: %w",
			productID, newQuantity, product.Stock, models.ErrOutOfStock)
	}

	if line.ID == 0 {
		err = tx.GetContext(ctx, &line, `
			INSERT INTO cart_lines (cart_id, product_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id, cart_id, product_id, quantity`, cart.ID, productID, newQuantity)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE cart_lines SET quantity = $1 WHERE id = $2", newQuantity, line.ID)
		line.Quantity = newQuantity
	}
	if err != nil {
		return nil, fmt.Errorf("upserting cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateCartLineQuantityTx sets a line's quantity. Zero deletes the
// line; anything above current product stock is rejected.
func (s *Store) UpdateCartLineQuantityTx(ctx context.Context, lineID int64, quantity int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var line models.CartLine
	if err := tx.GetContext(ctx, &line,
		"SELECT * FROM cart_lines WHERE id = $1 FOR UPDATE", lineID); err != nil {
		return convertErr(err, "cart line %d", lineID)
	}

	if quantity == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cart_lines WHERE id = $1", lineID); err != nil {
			return fmt.Errorf("deleting cart line %d: %w", lineID, err)
		}
		return tx.Commit()
	}

	var stock int
	if err := tx.GetContext(ctx, &stock,
		"SELECT stock FROM products WHERE id = $1", line.ProductID); err != nil {
		return convertErr(err, "product %d", line.ProductID)
	}
	if quantity > stock {
		return fmt.Errorf("product %d, requested %d of %d in stock: %w",
			line.ProductID, quantity, stock, models.ErrOutOfStock)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE cart_lines SET quantity = $1 WHERE id = $2", quantity, lineID); err != nil {
		return fmt.Errorf("updating cart line %d: %w", lineID, err)
	}
	return tx.Commit()
}

// DeleteCartLine removes a line unconditionally
func (s *Store) DeleteCartLine(ctx context.Context, lineID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cart_lines WHERE id = $1", lineID)
	if err != nil {
		return convertErr(err, "deleting cart line %d", lineID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart line %d: %w", lineID, models.ErrNotFound)
	}
	return nil
}

// DeleteCart removes a cart and, via cascade, its lines
func (s *Store) DeleteCart(ctx context.Context, cartID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM carts WHERE id = $1", cartID)
	if err != nil {
		return convertErr(err, "deleting cart %d", cartID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart %d: %w", cartID, models.ErrNotFound)
	}
	return nil
}

// CheckoutCartTx freezes the cart and creates its order with status
// NOT_PAID. The total is computed from the lines at current prices.
// A cart checks out exactly once.
func (s *Store) CheckoutCartTx(ctx context.Context, cartID int64) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var cart models.Cart
	if err := tx.GetContext(ctx, &cart,
		"SELECT * FROM carts WHERE id = $1 FOR UPDATE", cartID); err != nil {
		return nil, convertErr(err, "cart %d", cartID)
	}
	if cart.IsCheckedOut {
		return nil, fmt.Errorf("cart %d already checked out: %w", cartID, models.ErrConflict)
	}

	var total int64
	err = tx.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(cl.quantity * p.price), 0)
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1`, cartID)
	if err != nil {
		return nil, fmt.Errorf("summing cart %d: %w", cartID, err)
	}
	if total == 0 {
		return nil, fmt.Errorf("cart %d is empty: %w", cartID, models.ErrValidation)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE carts SET is_checked_out = TRUE WHERE id = $1", cartID); err != nil {
		return nil, fmt.Errorf("freezing cart %d: %w", cartID, err)
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		INSERT INTO orders (cart_id, customer_id, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING *`, cartID, cart.CustomerID, total, models.OrderStatusNotPaid)
	if err != nil {
		return nil, fmt.Errorf("creating order for cart %d: %w", cartID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}
