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

// AuthService handles registration and login
type AuthService struct {
	store     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store UserStore, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:     store,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    util.GetLogger(),
	}
}

// RegisterRequest carries the shared registration fields for customers
// and workers
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Domicile  string `json:"domicile" binding:"required"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token
type LoginResponse struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
}

// RegisterCustomer creates a user with role customer and its profile
func (s *AuthService) RegisterCustomer(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.RegisterCustomer")
	defer span.End()

	hash, err := auth.HashSecret(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
	}
	customer := &models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Domicile:  req.Domicile,
	}

	if err := s.store.CreateUserWithCustomerTx(ctx, user, customer); err != nil {
		return nil, err
	}

	s.logger.Info("registered customer",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// RegisterWorker creates a user with role worker and its profile
func (s *AuthService) RegisterWorker(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.RegisterWorker")
	defer span.End()

	hash, err := auth.HashSecret(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleWorker,
	}
	worker := &models.Worker{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Domicile:  req.Domicile,
		Available: true,
	}

	if err := s.store.CreateUserWithWorkerTx(ctx, user, worker); err != nil {
		return nil, err
	}

	s.logger.Info("registered worker",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues a JWT carrying the user's role
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if !auth.CompareSecret(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.tokenTTL, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return &LoginResponse{Token: token, Role: user.Role}, nil
}

// RoleOf resolves the role for a user id. Unknown users map to
// RoleUnknown without error.
func (s *AuthService) RoleOf(ctx context.Context, userID int64) (models.Role, error) {
	return s.store.RoleOf(ctx, userID)
}

// WorkerProfileRequest replaces a worker's editable profile fields
type WorkerProfileRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Domicile  string `json:"domicile" binding:"required"`
}

// WorkerProfile returns the caller's own worker profile
func (s *AuthService) WorkerProfile(ctx context.Context, userID int64) (*models.Worker, error) {
	worker, err := s.store.GetWorkerByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("user %d has no worker profile: %w", userID, models.ErrForbidden)
		}
		return nil, err
	}
	return worker, nil
}

// UpdateWorkerProfile replaces the caller's own worker profile fields
func (s *AuthService) UpdateWorkerProfile(ctx context.Context, userID int64, req *WorkerProfileRequest) (*models.Worker, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.UpdateWorkerProfile")
	defer span.End()

	worker, err := s.WorkerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	worker.FirstName = req.FirstName
	worker.LastName = req.LastName
	worker.Email = req.Email
	worker.Phone = req.Phone
	worker.Domicile = req.Domicile

	if err := s.store.UpdateWorkerProfile(ctx, worker); err != nil {
		return nil, err
	}

	s.logger.Info("worker profile updated", zap.Int64("worker_id", worker.ID))
	return worker, nil
}

// EnsureAdmin creates the bootstrap admin account unless a user with
// that username already exists. Safe to call on every startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hash, err := auth.HashSecret(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	admin := &models.Admin{
		FirstName: "Site",
		LastName:  "Admin",
		Email:     username + "@localhost",
		Phone:     "-",
	}

	if err := s.store.CreateUserWithAdminTx(ctx, user, admin); err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", zap.Int64("user_id", user.ID))
	return nil
}
