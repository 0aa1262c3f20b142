package store

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"
)

// CreateWalletTx creates a wallet account with its zero-balance ledger
// in one transaction. A second wallet for the same user violates the
// unique constraint and surfaces as ErrAlreadyExists.
func (s *Store) CreateWalletTx(ctx context.Context, userID int64, pinHash string) (*models.WalletAccount, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var account models.WalletAccount
	err = tx.GetContext(ctx, &account, `
		INSERT INTO wallet_accounts (user_id, pin_hash)
		VALUES ($1, $2)
		RETURNING *`, userID, pinHash)
	if err != nil {
		return nil, convertErr(err, "creating wallet account for user %d", userID)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO wallets (wallet_account_id, saldo) VALUES ($1, 0)", account.ID); err != nil {
		return nil, fmt.Errorf("creating wallet for account %d: %w", account.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetWalletAccountByUserID retrieves the wallet account bound to a user
func (s *Store) GetWalletAccountByUserID(ctx context.Context, userID int64) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := s.db.GetContext(ctx, &account,
		"SELECT * FROM wallet_accounts WHERE user_id = $1", userID)
	if err != nil {
		return nil, convertErr(err, "wallet account for user %d", userID)
	}
	return &account, nil
}

// GetWalletAccountByID retrieves a wallet account by id
func (s *Store) GetWalletAccountByID(ctx context.Context, id int64) (*models.WalletAccount, error) {
	var account models.WalletAccount
	err := s.db.GetContext(ctx, &account,
		"SELECT * FROM wallet_accounts WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "wallet account %d", id)
	}
	return &account, nil
}

// GetWalletByAccountID retrieves the balance ledger of a wallet account
func (s *Store) GetWalletByAccountID(ctx context.Context, accountID int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.GetContext(ctx, &wallet,
		"SELECT * FROM wallets WHERE wallet_account_id = $1", accountID)
	if err != nil {
		return nil, convertErr(err, "wallet for account %d", accountID)
	}
	return &wallet, nil
}

// RecordPINAttempt persists the attempt counter and timestamp after a
// PIN check.
func (s *Store) RecordPINAttempt(ctx context.Context, accountID int64, attempts int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE wallet_accounts SET login_attempts = $1, last_attempt_at = $2 WHERE id = $3",
		attempts, at, accountID)
	if err != nil {
		return fmt.Errorf("recording pin attempt for account %d: %w", accountID, err)
	}
	return nil
}

// ResetPINAttempts clears the attempt counter after a successful check
// or an elapsed lockout window.
func (s *Store) ResetPINAttempts(ctx context.Context, accountID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE wallet_accounts SET login_attempts = 0, last_attempt_at = NULL WHERE id = $1",
		accountID)
	if err != nil {
		return fmt.Errorf("resetting pin attempts for account %d: %w", accountID, err)
	}
	return nil
}

// CreditWalletTx credits a wallet under a row lock. Used for top-ups;
// refunds and fee credits run inside their own order transactions.
func (s *Store) CreditWalletTx(ctx context.Context, accountID, amount int64) (*models.Wallet, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var wallet models.Wallet
	if err := tx.GetContext(ctx, &wallet,
		"SELECT * FROM wallets WHERE wallet_account_id = $1 FOR UPDATE", accountID); err != nil {
		return nil, convertErr(err, "wallet for account %d", accountID)
	}

	wallet.Saldo += amount
	if _, err := tx.ExecContext(ctx,
		"UPDATE wallets SET saldo = $1 WHERE id = $2", wallet.Saldo, wallet.ID); err != nil {
		return nil, fmt.Errorf("crediting wallet %d: %w", wallet.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &wallet, nil
}
