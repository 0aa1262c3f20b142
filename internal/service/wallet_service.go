package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"
)

// WalletService handles the PIN-gated stored-value subsystem
type WalletService struct {
	store          WalletStore
	orders         OrderStore
	sessions       SessionStore
	eventPublisher OrderEventPublisher
	maxPINAttempts int
	lockoutWindow  time.Duration
	sessionTTL     time.Duration
	deliveryFee    int64
	logger         *zap.Logger
}

// WalletServiceConfig carries the wallet policy knobs
type WalletServiceConfig struct {
	MaxPINAttempts int
	LockoutWindow  time.Duration
	SessionTTL     time.Duration
	DeliveryFee    int64
}

// NewWalletService creates a new wallet service
func NewWalletService(
	walletStore WalletStore,
	orderStore OrderStore,
	sessions SessionStore,
	eventPublisher OrderEventPublisher,
	cfg WalletServiceConfig,
) *WalletService {
	return &WalletService{
		store:          walletStore,
		orders:         orderStore,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		maxPINAttempts: cfg.MaxPINAttempts,
		lockoutWindow:  cfg.LockoutWindow,
		sessionTTL:     cfg.SessionTTL,
		deliveryFee:    cfg.DeliveryFee,
		logger:         util.GetLogger(),
	}
}

// PINRequest carries a raw wallet PIN
type PINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// TopUpRequest credits the wallet
type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// PayOrderRequest pays an order from the wallet
type PayOrderRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// WalletView is the wallet balance shown to its owner
type WalletView struct {
	WalletAccountID int64 `json:"wallet_account_id"`
	Saldo           int64 `json:"saldo"`
}

// SessionResponse carries an issued wallet session token
type SessionResponse struct {
	Token     string        `json:"token"`
	ExpiresIn time.Duration `json:"expires_in"`
}

// Register opens a wallet for the user, guarded by a six digit PIN.
// A user has at most one wallet.
func (s *WalletService) Register(ctx context.Context, userID int64, pin string) (*models.WalletAccount, error) {
	ctx, span := util.StartSpan(ctx, "WalletService.Register")
	defer span.End()

	if !auth.ValidPIN(pin) {
		return nil, fmt.Errorf("PIN must be exactly six digits: %w", models.ErrValidation)
	}
	hash, err := auth.HashSecret(pin)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	account, err := s.store.CreateWalletTx(ctx, userID, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet registered",
		zap.Int64("user_id", userID),
		zap.Int64("wallet_account_id", account.ID))
	return account, nil
}

// verifyPIN checks the PIN against the account hash under the failed
// attempt policy: maxPINAttempts consecutive failures lock the account
// for lockoutWindow, and a success or an expired window resets the
// counter.
func (s *WalletService) verifyPIN(ctx context.Context, account *models.WalletAccount, pin string) error {
	now := time.Now()

	attempts := account.LoginAttempts
	if account.LastAttemptAt != nil && now.Sub(*account.LastAttemptAt) >= s.lockoutWindow {
		attempts = 0
	}
	if attempts >= s.maxPINAttempts {
		return fmt.Errorf("wallet account %d locked: %w", account.ID, models.ErrWalletLocked)
	}

	if !auth.CompareSecret(account.PINHash, pin) {
		attempts++
		if err := s.store.RecordPINAttempt(ctx, account.ID, attempts, now); err != nil {
			return err
		}
		util.WalletPINFailuresTotal.Inc()
		if attempts >= s.maxPINAttempts {
			util.WalletLockoutsTotal.Inc()
			s.logger.Warn("wallet locked after repeated PIN failures",
				zap.Int64("wallet_account_id", account.ID))
			return fmt.Errorf("wallet account %d locked: %w", account.ID, models.ErrWalletLocked)
		}
		return fmt.Errorf("wrong PIN: %w", models.ErrInvalidPIN)
	}

	if account.LoginAttempts > 0 {
		if err := s.store.ResetPINAttempts(ctx, account.ID); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate verifies the PIN and opens a wallet session. A new
// session replaces any previous one for the same account.
func (s *WalletService) Authenticate(ctx context.Context, userID int64, pin string) (*SessionResponse, error) {
	ctx, span := util.StartSpan(ctx, "WalletService.Authenticate")
	defer span.End()

	account, err := s.store.GetWalletAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPIN(ctx, account, pin); err != nil {
		return nil, err
	}

	token, err := s.sessions.CreateWalletSession(ctx, account.ID, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet session: %w", err)
	}

	s.logger.Info("wallet session opened",
		zap.Int64("wallet_account_id", account.ID))
	return &SessionResponse{Token: token, ExpiresIn: s.sessionTTL}, nil
}

// Logout revokes the wallet session token
func (s *WalletService) Logout(ctx context.Context, token string) error {
	ctx, span := util.StartSpan(ctx, "WalletService.Logout")
	defer span.End()

	return s.sessions.RevokeWalletSession(ctx, token)
}

// requireSession resolves the session token to the caller's own wallet
// account.
func (s *WalletService) requireSession(ctx context.Context, userID int64, token string) (*models.WalletAccount, error) {
	if token == "" {
		return nil, fmt.Errorf("wallet session required: %w", models.ErrSessionExpired)
	}
	accountID, err := s.sessions.GetWalletSession(ctx, token)
	if err != nil {
		return nil, err
	}
	account, err := s.store.GetWalletAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("wallet session does not belong to user %d: %w", userID, models.ErrForbidden)
	}
	return account, nil
}

// Show returns the wallet balance. Requires an active session.
func (s *WalletService) Show(ctx context.Context, userID int64, token string) (*WalletView, error) {
	ctx, span := util.StartSpan(ctx, "WalletService.Show")
	defer span.End()

	account, err := s.requireSession(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	wallet, err := s.store.GetWalletByAccountID(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &WalletView{WalletAccountID: account.ID, Saldo: wallet.Saldo}, nil
}

// TopUp credits the wallet. Requires an active session.
func (s *WalletService) TopUp(ctx context.Context, userID int64, token string, amount int64) (*WalletView, error) {
	ctx, span := util.StartSpan(ctx, "WalletService.TopUp")
	defer span.End()

	if amount <= 0 {
		return nil, fmt.Errorf("top up amount must be positive: %w", models.ErrValidation)
	}
	account, err := s.requireSession(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	wallet, err := s.store.CreditWalletTx(ctx, account.ID, amount)
	if err != nil {
		return nil, err
	}

	util.WalletTopUpsTotal.Inc()
	s.logger.Info("wallet topped up",
		zap.Int64("wallet_account_id", account.ID),
		zap.Int64("amount", amount))
	return &WalletView{WalletAccountID: account.ID, Saldo: wallet.Saldo}, nil
}

// PayOrder debits the wallet for the customer's own NOT_PAID order.
// Requires an active session and the PIN re-entered; the delivery fee
// is fixed at payment time.
func (s *WalletService) PayOrder(ctx context.Context, userID int64, token, pin string, orderID int64) (*models.OrderPayment, error) {
	ctx, span := util.StartSpan(ctx, "WalletService.PayOrder")
	defer span.End()

	start := time.Now()
	payment, err := s.payOrder(ctx, userID, token, pin, orderID)
	util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		util.PaymentFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	util.OrdersPaidTotal.Inc()
	return payment, nil
}

func (s *WalletService) payOrder(ctx context.Context, userID int64, token, pin string, orderID int64) (*models.OrderPayment, error) {
	account, err := s.requireSession(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPIN(ctx, account, pin); err != nil {
		return nil, err
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	customer, err := s.orders.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, fmt.Errorf("order %d: %w", orderID, models.ErrForbidden)
	}

	payment, err := s.orders.PayOrderTx(ctx, orderID, account.ID, s.deliveryFee)
	if err != nil {
		return nil, err
	}

	if err := s.eventPublisher.PublishOrderPaid(ctx, order, account.ID, payment.DeliveryFee); err != nil {
		s.logger.Error("failed to publish paid event",
			zap.Int64("order_id", orderID), zap.Error(err))
	}

	s.logger.Info("order paid",
		zap.Int64("order_id", orderID),
		zap.Int64("wallet_account_id", account.ID),
		zap.Int64("amount", order.Total))
	return payment, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, models.ErrInvalidPIN):
		return "invalid_pin"
	case errors.Is(err, models.ErrWalletLocked):
		return "wallet_locked"
	case errors.Is(err, models.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	default:
		return "other"
	}
}
