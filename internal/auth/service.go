package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// ErrUnknownRole indicates a role outside the known set.
var ErrUnknownRole = errors.New("auth: unknown role")

// Service wraps credential verification and account management.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials and returns the account.
// Lookup misses, inactive accounts and hash mismatches all collapse into
// ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser registers a new account. Only admins may create users.
func (s *Service) CreateUser(ctx context.Context, username, password string, role shared.Role, actor shared.Actor) (int64, error) {
	if actor.Role != shared.RoleAdmin {
		return 0, shared.ErrForbidden
	}
	if username == "" || password == "" {
		return 0, errors.New("auth: username and password required")
	}
	if !shared.ValidRole(role) {
		return 0, ErrUnknownRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("auth: hash password: %w", err)
	}
	return s.repo.Create(ctx, User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
}
