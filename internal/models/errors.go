package models

import "errors"

// Domain errors. Store and service code wraps these with context using
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes
// with errors.Is.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input is malformed or out of range.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden means the principal's role or ownership check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means the operation collides with current state:
	// order already taken, already paid, checkout on a checked-out cart.
	ErrConflict = errors.New("conflict")

	// ErrAlreadyExists means a unique resource is already bound, such
	// as a second wallet for the same user.
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutOfStock means a cart quantity would exceed product stock.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInsufficientFunds means the wallet balance cannot cover the
	// order total.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidPIN means PIN verification failed.
	ErrInvalidPIN = errors.New("invalid pin")

	// ErrWalletLocked means PIN attempts are exhausted and the lockout
	// window has not elapsed yet.
	ErrWalletLocked = errors.New("wallet locked")

	// ErrSessionExpired means the wallet session token is missing,
	// unknown or past its TTL; the caller must re-authenticate.
	ErrSessionExpired = errors.New("wallet session expired")

	// ErrUnauthorized means the identity token is missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
)
