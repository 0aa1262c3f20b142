package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// OrderService drives the order lifecycle
type OrderService struct {
	store          OrderStore
	eventPublisher OrderEventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderStore OrderStore, eventPublisher OrderEventPublisher) *OrderService {
	return &OrderService{
		store:          orderStore,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// OrderListView groups a customer's orders with per-status counts
type OrderListView struct {
	Orders []models.Order `json:"orders"`
	Counts map[string]int `json:"counts"`
}

// OrderDetailView is one order with its frozen cart contents. The role
// flags tell the client which action set applies, and workers and
// admins additionally see the payment record and the assigned worker.
type OrderDetailView struct {
	Order        *models.Order        `json:"order"`
	CartProducts []CartLineView       `json:"cart_products"`
	CanCancel    bool                 `json:"can_cancel"`
	IsCustomer   bool                 `json:"is_customer"`
	IsWorker     bool                 `json:"is_worker"`
	IsAdmin      bool                 `json:"is_admin"`
	Payment      *models.OrderPayment `json:"payment,omitempty"`
	Worker       *models.Worker       `json:"worker,omitempty"`
}

// AdvanceStatusRequest is the admin progression hop
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *OrderService) customerID(ctx context.Context, userID int64) (int64, error) {
	customer, err := s.store.GetCustomerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("user %d has no customer profile: %w", userID, models.ErrForbidden)
		}
		return 0, err
	}
	return customer.ID, nil
}

func (s *OrderService) workerID(ctx context.Context, userID int64) (int64, error) {
	worker, err := s.store.GetWorkerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("user %d has no worker profile: %w", userID, models.ErrForbidden)
		}
		return 0, err
	}
	return worker.ID, nil
}

// ListForCustomer returns a customer's own orders, optionally filtered
// by status, with status counts for the whole set.
func (s *OrderService) ListForCustomer(ctx context.Context, userID int64, status string) (*OrderListView, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListForCustomer")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.GetOrdersByCustomer(ctx, customerID, status)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountOrdersByStatus(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &OrderListView{Orders: orders, Counts: counts}, nil
}

// ListForWorker returns the orders assigned to the calling worker
func (s *OrderService) ListForWorker(ctx context.Context, userID int64) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListForWorker")
	defer span.End()

	workerID, err := s.workerID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.GetOrdersByWorker(ctx, workerID)
}

// ListAvailable returns ready, unassigned orders a worker may take
func (s *OrderService) ListAvailable(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAvailable")
	defer span.End()

	return s.store.GetAvailableOrders(ctx)
}

// ListAll returns every order, for admins
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAll")
	defer span.End()

	return s.store.GetAllOrders(ctx)
}

// Detail returns the order with its frozen cart contents. Customers
// see only their own orders; workers see assigned or still-takeable
// ones; admins see all.
func (s *OrderService) Detail(ctx context.Context, userID int64, role models.Role, orderID int64) (*OrderDetailView, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Detail")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
	case models.RoleCustomer:
		customerID, err := s.customerID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if order.CustomerID != customerID {
			return nil, fmt.Errorf("order %d: %w", orderID, models.ErrForbidden)
		}
	case models.RoleWorker:
		workerID, err := s.workerID(ctx, userID)
		if err != nil {
			return nil, err
		}
		assigned := order.WorkerID != nil && *order.WorkerID == workerID
		takeable := order.Status == models.OrderStatusReady && order.WorkerID == nil
		if !assigned && !takeable {
			return nil, fmt.Errorf("order %d: %w", orderID, models.ErrForbidden)
		}
	default:
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrForbidden)
	}

	lines, err := s.store.GetCartLines(ctx, order.CartID)
	if err != nil {
		return nil, err
	}

	view := &OrderDetailView{
		Order:        order,
		CartProducts: lineViews(lines),
		CanCancel:    models.CanCancelOrder(order.Status),
		IsCustomer:   role == models.RoleCustomer,
		IsWorker:     role == models.RoleWorker,
		IsAdmin:      role == models.RoleAdmin,
	}

	if role == models.RoleWorker || role == models.RoleAdmin {
		payment, err := s.store.GetOrderPaymentByOrderID(ctx, orderID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		view.Payment = payment
		if order.WorkerID != nil {
			assignee, err := s.store.GetWorkerByID(ctx, *order.WorkerID)
			if err != nil {
				return nil, err
			}
			view.Worker = assignee
		}
	}

	return view, nil
}

// Cancel cancels the customer's own order. Paid orders are refunded
// and their stock restored.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID int64) (int64, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()

	customerID, err := s.customerID(ctx, userID)
	if err != nil {
		return 0, err
	}
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if order.CustomerID != customerID {
		return 0, fmt.Errorf("order %d: %w", orderID, models.ErrForbidden)
	}

	refund, err := s.store.CancelOrderTx(ctx, orderID)
	if err != nil {
		return 0, err
	}

	util.OrdersCancelledTotal.Inc()
	if err := s.eventPublisher.PublishOrderCancelled(ctx, order, refund); err != nil {
		s.logger.Error("failed to publish cancelled event",
			zap.Int64("order_id", orderID), zap.Error(err))
	}

	s.logger.Info("order cancelled",
		zap.Int64("order_id", orderID),
		zap.Int64("refund", refund))
	return refund, nil
}

// Take binds the calling worker to a ready order. Exactly one of any
// number of concurrent takers succeeds.
func (s *OrderService) Take(ctx context.Context, userID, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Take")
	defer span.End()

	workerID, err := s.workerID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.store.TakeOrderTx(ctx, orderID, workerID); err != nil {
		if errors.Is(err, models.ErrConflict) {
			util.TakeConflictsTotal.Inc()
		}
		return err
	}

	util.OrdersTakenTotal.Inc()
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err == nil {
		if err := s.eventPublisher.PublishOrderTaken(ctx, order, workerID); err != nil {
			s.logger.Error("failed to publish taken event",
				zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	s.logger.Info("order taken",
		zap.Int64("order_id", orderID),
		zap.Int64("worker_id", workerID))
	return nil
}

// Complete finishes a delivery. Only the bound worker may complete,
// and the delivery fee is credited to that worker's wallet.
func (s *OrderService) Complete(ctx context.Context, userID, orderID int64) (int64, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Complete")
	defer span.End()

	workerID, err := s.workerID(ctx, userID)
	if err != nil {
		return 0, err
	}

	fee, err := s.store.CompleteOrderTx(ctx, orderID, workerID)
	if err != nil {
		return 0, err
	}

	util.OrdersCompletedTotal.Inc()
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err == nil {
		if err := s.eventPublisher.PublishOrderCompleted(ctx, order, workerID, fee); err != nil {
			s.logger.Error("failed to publish completed event",
				zap.Int64("order_id", orderID), zap.Error(err))
		}
	}

	s.logger.Info("order completed",
		zap.Int64("order_id", orderID),
		zap.Int64("worker_id", workerID),
		zap.Int64("delivery_fee", fee))
	return fee, nil
}

// Advance performs the admin progression hops, paid to prepared and
// prepared to ready. All other targets are rejected.
func (s *OrderService) Advance(ctx context.Context, orderID int64, to string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Advance")
	defer span.End()

	if to != models.OrderStatusPrepared && to != models.OrderStatusReady {
		return fmt.Errorf("status %q is not an admin hop: %w", to, models.ErrValidation)
	}
	if err := s.store.AdvanceOrderStatusTx(ctx, orderID, to); err != nil {
		return err
	}

	s.logger.Info("order advanced",
		zap.Int64("order_id", orderID),
		zap.String("status", to))
	return nil
}

// AuditTrail returns the recorded lifecycle events of an order
func (s *OrderService) AuditTrail(ctx context.Context, orderID int64) ([]models.OrderAuditRecord, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AuditTrail")
	defer span.End()

	return s.store.GetOrderAuditTrail(ctx, orderID)
}
