package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-service/internal/models"
)

// CreateUserWithCustomerTx creates the identity row and its customer
// profile in one transaction.
func (s *Store) CreateUserWithCustomerTx(ctx context.Context, user *models.User, customer *models.Customer) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, user, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		user.Username, user.PasswordHash, models.RoleCustomer)
	if err != nil {
		return convertErr(err, "creating user %q", user.Username)
	}
	user.Role = models.RoleCustomer

	err = tx.GetContext(ctx, &customer.ID, `
		INSERT INTO customers (user_id, first_name, last_name, email, phone, domicile)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		user.ID, customer.FirstName, customer.LastName, customer.Email, customer.Phone, customer.Domicile)
	if err != nil {
		return convertErr(err, "creating customer profile for user %d", user.ID)
	}
	customer.UserID = user.ID

	return tx.Commit()
}

// CreateUserWithWorkerTx creates the identity row and its worker
// profile in one transaction. New workers start out available.
func (s *Store) CreateUserWithWorkerTx(ctx context.Context, user *models.User, worker *models.Worker) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, user, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		user.Username, user.PasswordHash, models.RoleWorker)
	if err != nil {
		return convertErr(err, "creating user %q", user.Username)
	}
	user.Role = models.RoleWorker

	err = tx.GetContext(ctx, &worker.ID, `
		INSERT INTO workers (user_id, first_name, last_name, email, phone, domicile, available)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id`,
		user.ID, worker.FirstName, worker.LastName, worker.Email, worker.Phone, worker.Domicile)
	if err != nil {
		return convertErr(err, "creating worker profile for user %d", user.ID)
	}
	worker.UserID = user.ID
	worker.Available = true

	return tx.Commit()
}

// CreateUserWithAdminTx creates the identity row and its admin profile
// in one transaction. Admins are provisioned at startup, not through
// the public registration endpoints.
func (s *Store) CreateUserWithAdminTx(ctx context.Context, user *models.User, admin *models.Admin) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, user, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		user.Username, user.PasswordHash, models.RoleAdmin)
	if err != nil {
		return convertErr(err, "creating user %q", user.Username)
	}
	user.Role = models.RoleAdmin

	err = tx.GetContext(ctx, &admin.ID, `
		INSERT INTO admins (user_id, first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		user.ID, admin.FirstName, admin.LastName, admin.Email, admin.Phone)
	if err != nil {
		return convertErr(err, "creating admin profile for user %d", user.ID)
	}
	admin.UserID = user.ID

	return tx.Commit()
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE username = $1", username)
	if err != nil {
		return nil, convertErr(err, "user %q", username)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "user %d", id)
	}
	return &user, nil
}

// RoleOf returns the role recorded for a user id. Unknown users map to
// RoleUnknown rather than an error so callers can gate on the result.
func (s *Store) RoleOf(ctx context.Context, userID int64) (models.Role, error) {
	var role models.Role
	err := s.db.GetContext(ctx, &role, "SELECT role FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleUnknown, nil
		}
		return models.RoleUnknown, convertErr(err, "role of user %d", userID)
	}
	return role, nil
}

// GetCustomerByUserID retrieves the customer profile behind a user
func (s *Store) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE user_id = $1", userID)
	if err != nil {
		return nil, convertErr(err, "customer profile for user %d", userID)
	}
	return &customer, nil
}

// GetWorkerByUserID retrieves the worker profile behind a user
func (s *Store) GetWorkerByUserID(ctx context.Context, userID int64) (*models.Worker, error) {
	var worker models.Worker
	err := s.db.GetContext(ctx, &worker, "SELECT * FROM workers WHERE user_id = $1", userID)
	if err != nil {
		return nil, convertErr(err, "worker profile for user %d", userID)
	}
	return &worker, nil
}

// GetWorkerByID retrieves a worker profile by its own id
func (s *Store) GetWorkerByID(ctx context.Context, id int64) (*models.Worker, error) {
	var worker models.Worker
	err := s.db.GetContext(ctx, &worker, "SELECT * FROM workers WHERE id = $1", id)
	if err != nil {
		return nil, convertErr(err, "worker %d", id)
	}
	return &worker, nil
}

// UpdateWorkerProfile updates a worker's editable profile fields
func (s *Store) UpdateWorkerProfile(ctx context.Context, worker *models.Worker) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE workers SET first_name = $1, last_name = $2, email = $3, phone = $4, domicile = $5
		WHERE id = $6`,
		worker.FirstName, worker.LastName, worker.Email, worker.Phone, worker.Domicile, worker.ID)
	if err != nil {
		return convertErr(err, "updating worker %d", worker.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("worker %d: %w", worker.ID, models.ErrNotFound)
	}
	return nil
}
