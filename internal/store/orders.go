package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"
)

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "order %d", id)
	}
	return &order, nil
}

// GetOrdersByCustomer retrieves a customer's orders, newest first,
// optionally filtered by status
func (s *Store) GetOrdersByCustomer(ctx context.Context, customerID int64, status string) ([]models.Order, error) {
	var orders []models.Order
	if status == "" {
		err := s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE customer_id = $1 ORDER BY created_at DESC", customerID)
		return orders, err
	}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE customer_id = $1 AND status = $2 ORDER BY created_at DESC",
		customerID, status)
	return orders, err
}

// CountOrdersByStatus returns per-status counts for a customer's
// orders, the summary the customer order page renders.
func (s *Store) CountOrdersByStatus(ctx context.Context, customerID int64) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT status, COUNT(*) FROM orders WHERE customer_id = $1 GROUP BY status", customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// GetOrdersByWorker retrieves the orders assigned to a worker
func (s *Store) GetOrdersByWorker(ctx context.Context, workerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE worker_id = $1 ORDER BY created_at DESC", workerID)
	return orders, err
}

// GetAllOrders retrieves every order, newest first (admin view)
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// GetAvailableOrders lists ready orders no worker has taken yet
func (s *Store) GetAvailableOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 AND worker_id IS NULL ORDER BY created_at",
		models.OrderStatusReady)
	return orders, err
}

// GetOrderPaymentByOrderID retrieves the payment record of an order
func (s *Store) GetOrderPaymentByOrderID(ctx context.Context, orderID int64) (*models.OrderPayment, error) {
	var payment models.OrderPayment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM order_payments WHERE order_id = $1", orderID)
	if err != nil {
		return nil, convertErr(err, "payment for order %d", orderID)
	}
	return &payment, nil
}

// PayOrderTx performs the wallet payment as one atomic unit: the order
// row, the wallet row and every product row are locked, the balance is
// debited, stock is decremented per cart line, the payment record is
// written and the order advances to PAID. Any violated guard rolls the
// whole thing back.
func (s *Store) PayOrderTx(ctx context.Context, orderID, walletAccountID, deliveryFee int64) (*models.OrderPayment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order models.Order
	if err := tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
		return nil, convertErr(err, "order %d", orderID)
	}
	if order.Status != models.OrderStatusNotPaid {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	var wallet models.Wallet
	if err := tx.GetContext(ctx, &wallet,
		"SELECT * FROM wallets WHERE wallet_account_id = $1 FOR UPDATE", walletAccountID); err != nil {
		return nil, convertErr(err, "wallet for account %d", walletAccountID)
	}
	if wallet.Saldo < order.Total {
		return nil, fmt.Errorf("saldo %d below total %d: %w",
			wallet.Saldo, order.Total, models.ErrInsufficientFunds)
	}

	var lines []models.CartLine
	if err := tx.SelectContext(ctx, &lines,
		"SELECT * FROM cart_lines WHERE cart_id = $1 ORDER BY product_id", order.CartID); err != nil {
		return nil, fmt.Errorf("lines of cart %d: %w", order.CartID, err)
	}

	for _, line := range lines {
		var stock int
		if err := tx.GetContext(ctx, &stock,
			"SELECT stock FROM products WHERE id = $1 FOR UPDATE", line.ProductID); err != nil {
			return nil, convertErr(err, "product %d", line.ProductID)
		}
		if stock < line.Quantity {
			return nil, fmt.Errorf("product %d, need %d of %d in stock: %w",
				line.ProductID, line.Quantity, stock, models.ErrOutOfStock)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2",
			line.Quantity, line.ProductID); err != nil {
			return nil, fmt.Errorf("decrementing stock of product %d: %w", line.ProductID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE wallets SET saldo = saldo - $1 WHERE id = $2", order.Total, wallet.ID); err != nil {
		return nil, fmt.Errorf("debiting wallet %d: %w", wallet.ID, err)
	}

	var payment models.OrderPayment
	err = tx.GetContext(ctx, &payment, `
		INSERT INTO order_payments (order_id, wallet_account_id, delivery_fee)
		VALUES ($1, $2, $3)
		RETURNING *`, orderID, walletAccountID, deliveryFee)
	if err != nil {
		return nil, convertErr(err, "creating payment for order %d", orderID)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		models.OrderStatusPaid, orderID); err != nil {
		return nil, fmt.Errorf("advancing order %d: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &payment, nil
}

// CancelOrderTx cancels an order still in NOT_PAID or PAID. For paid
// orders it restores stock for every cart line and refunds the order
// total to the paying wallet, all inside the same transaction. The
// refund amount is returned.
func (s *Store) CancelOrderTx(ctx context.Context, orderID int64) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var order models.Order
	if err := tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
		return 0, convertErr(err, "order %d", orderID)
	}
	if !models.CanCancelOrder(order.Status) {
		return 0, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	var refund int64
	if order.Status == models.OrderStatusPaid {
		var lines []models.CartLine
		if err := tx.SelectContext(ctx, &lines,
			"SELECT * FROM cart_lines WHERE cart_id = $1 ORDER BY product_id", order.CartID); err != nil {
			return 0, fmt.Errorf("lines of cart %d: %w", order.CartID, err)
		}
		for _, line := range lines {
			if _, err := tx.ExecContext(ctx,
				"UPDATE products SET stock = stock + $1 WHERE id = $2",
				line.Quantity, line.ProductID); err != nil {
				return 0, fmt.Errorf("restoring stock of product %d: %w", line.ProductID, err)
			}
		}

		var payment models.OrderPayment
		if err := tx.GetContext(ctx, &payment,
			"SELECT * FROM order_payments WHERE order_id = $1", orderID); err != nil {
			return 0, convertErr(err, "payment for order %d", orderID)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE wallets SET saldo = saldo + $1 WHERE wallet_account_id = $2",
			order.Total, payment.WalletAccountID); err != nil {
			return 0, fmt.Errorf("refunding wallet account %d: %w", payment.WalletAccountID, err)
		}
		refund = order.Total
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		models.OrderStatusCancelled, orderID); err != nil {
		return 0, fmt.Errorf("cancelling order %d: %w", orderID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return refund, nil
}

// TakeOrderTx binds a worker to a ready order. The payment row is
// locked so two concurrent takers serialize; the loser sees the worker
// already set and gets ErrConflict, never a silent overwrite. The
// worker goes unavailable and the order advances to DELIVERED.
func (s *Store) TakeOrderTx(ctx context.Context, orderID, workerID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var order models.Order
	if err := tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
		return convertErr(err, "order %d", orderID)
	}
	if order.Status != models.OrderStatusReady {
		return fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}
	if order.WorkerID != nil {
		return fmt.Errorf("order %d already taken: %w", orderID, models.ErrConflict)
	}

	var payment models.OrderPayment
	if err := tx.GetContext(ctx, &payment,
		"SELECT * FROM order_payments WHERE order_id = $1 FOR UPDATE", orderID); err != nil {
		return convertErr(err, "payment for order %d", orderID)
	}
	if payment.WorkerID != nil {
		return fmt.Errorf("order %d already taken: %w", orderID, models.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE order_payments SET worker_id = $1 WHERE id = $2", workerID, payment.ID); err != nil {
		return fmt.Errorf("assigning worker to payment %d: %w", payment.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET worker_id = $1, status = $2, updated_at = NOW() WHERE id = $3",
		workerID, models.OrderStatusDelivered, orderID); err != nil {
		return fmt.Errorf("assigning worker to order %d: %w", orderID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE workers SET available = FALSE WHERE id = $1", workerID); err != nil {
		return fmt.Errorf("marking worker %d busy: %w", workerID, err)
	}

	return tx.Commit()
}

// CompleteOrderTx lets the bound worker finish a delivery: the order
// advances to COMPLETED, the delivery fee is credited to the worker's
// wallet and the worker becomes available again. A different worker
// gets ErrForbidden. The credited fee is returned.
func (s *Store) CompleteOrderTx(ctx context.Context, orderID, workerID int64) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var order models.Order
	if err := tx.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
		return 0, convertErr(err, "order %d", orderID)
	}
	if order.Status != models.OrderStatusDelivered {
		return 0, fmt.Errorf("order %d is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	var payment models.OrderPayment
	if err := tx.GetContext(ctx, &payment,
		"SELECT * FROM order_payments WHERE order_id = $1 FOR UPDATE", orderID); err != nil {
		return 0, convertErr(err, "payment for order %d", orderID)
	}
	if payment.WorkerID == nil || *payment.WorkerID != workerID {
		return 0, fmt.Errorf("order %d belongs to another worker: %w", orderID, models.ErrForbidden)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE wallets SET saldo = saldo + $1
		WHERE wallet_account_id = (SELECT wa.id FROM wallet_accounts wa
			JOIN workers w ON w.user_id = wa.user_id
			WHERE w.id = $2)`, payment.DeliveryFee, workerID)
	if err != nil {
		return 0, fmt.Errorf("crediting delivery fee to worker %d: %w", workerID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("wallet for worker %d: %w", workerID, models.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		models.OrderStatusCompleted, orderID); err != nil {
		return 0, fmt.Errorf("completing order %d: %w", orderID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE workers SET available = TRUE WHERE id = $1", workerID); err != nil {
		return 0, fmt.Errorf("marking worker %d available: %w", workerID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return payment.DeliveryFee, nil
}

// AdvanceOrderStatusTx moves an order along the admin hops
// (PAID → PREPARED → READY) under a row lock.
func (s *Store) AdvanceOrderStatusTx(ctx context.Context, orderID int64, to string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	if err := tx.GetContext(ctx, &current,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID); err != nil {
		return convertErr(err, "order %d", orderID)
	}
	if !models.ValidOrderTransition(current, to) {
		return fmt.Errorf("order %d: %s -> %s: %w", orderID, current, to, models.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", to, orderID); err != nil {
		return fmt.Errorf("advancing order %d: %w", orderID, err)
	}
	return tx.Commit()
}

// SetOrderStatus updates an order's status without transition checks.
// Only the review flow uses it, after its own guards.
func (s *Store) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", status, orderID)
	if err != nil {
		return convertErr(err, "order %d", orderID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %d: %w", orderID, models.ErrNotFound)
	}
	return nil
}
