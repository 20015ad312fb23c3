// Package service implements authentication and user management.
package service

import (
	"context"
	"errors"

	"pulsecapture_backend/internal/auth/password"
	"pulsecapture_backend/internal/auth/repository"
	"pulsecapture_backend/internal/auth/token"
	"pulsecapture_backend/internal/auth/transport"
	"pulsecapture_backend/platform/apperr"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/google/uuid"
)

const defaultRole = "admin"

type Service struct {
	repo     repository.Store
	jwtCfg   config.JWTConfig
	validate *validator.Validator
	log      *logger.Logger
}

func New(repo repository.Store, jwtCfg config.JWTConfig, validate *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, jwtCfg: jwtCfg, validate: validate, log: log}
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.LoginResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.LoginResponse{}, apperr.Unauthorized("Invalid credentials")
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.LoginResponse{}, apperr.Unauthorized("Invalid credentials")
	}

	if !user.IsActive {
		s.log.AuthEvent("login", req.Email, false, "inactive account")
		return transport.LoginResponse{}, apperr.Unauthorized("User account is inactive")
	}

	accessToken, err := token.Issue(s.jwtCfg, user.ID)
	if err != nil {
		return transport.LoginResponse{}, apperr.Internal("Failed to issue token")
	}

	s.log.AuthEvent("login", req.Email, true, "")
	return transport.LoginResponse{
		Token: accessToken,
		User:  toUserResponse(user),
	}, nil
}

// ResolveUser loads the user for an authenticated request.
func (s *Service) ResolveUser(ctx context.Context, id uuid.UUID) (repository.User, error) {
	return s.repo.GetByID(ctx, id)
}

// EnsureBootstrapAdmin creates the initial admin account from environment
// configuration when it does not exist yet.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	email := cfg.GetBootstrapAdminEmail()
	plain := cfg.GetBootstrapAdminPassword()
	if email == "" || plain == "" {
		s.log.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not configured; skipping bootstrap admin")
		return nil
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}

	name := cfg.GetBootstrapAdminName()
	if name == "" {
		name = "Admin"
	}

	_, err = s.repo.Create(ctx, repository.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         defaultRole,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil
	}
	if err == nil {
		s.log.Info("bootstrap admin created", "email", email)
	}
	return err
}

// CreateUser registers a new user account.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.UserResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, apperr.Internal("Failed to create user")
	}

	role := req.Role
	if role == "" {
		role = defaultRole
	}

	user, err := s.repo.Create(ctx, repository.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return transport.UserResponse{}, apperr.BadRequest("Email already in use")
		}
		s.log.DatabaseError("create user", err)
		return transport.UserResponse{}, apperr.Internal("Failed to create user")
	}

	return toUserResponse(user), nil
}

// ListUsers returns all user accounts.
func (s *Service) ListUsers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.DatabaseError("list users", err)
		return nil, apperr.Internal("Failed to list users")
	}

	items := make([]transport.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}
	return items, nil
}

// UpdateUser applies a partial edit to a user account.
func (s *Service) UpdateUser(ctx context.Context, rawID string, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return transport.UserResponse{}, apperr.Validation("Validation error").
			WithDetails(validator.FormatErrors(err))
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return transport.UserResponse{}, apperr.NotFound("User not found")
	}

	params := repository.UpdateUserParams{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return transport.UserResponse{}, apperr.Internal("Failed to update user")
		}
		params.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.UserResponse{}, apperr.NotFound("User not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return transport.UserResponse{}, apperr.BadRequest("Email already in use")
		default:
			s.log.DatabaseError("update user", err)
			return transport.UserResponse{}, apperr.Internal("Failed to update user")
		}
	}

	return toUserResponse(user), nil
}

// DeleteUser removes a user account. The requester cannot delete itself.
func (s *Service) DeleteUser(ctx context.Context, rawID string, requesterID uuid.UUID) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return apperr.NotFound("User not found")
	}

	if id == requesterID {
		return apperr.BadRequest("Cannot delete your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		s.log.DatabaseError("delete user", err)
		return apperr.Internal("Failed to delete user")
	}
	return nil
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
