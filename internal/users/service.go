package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

var (
	// ErrCredentialsRequired is returned for a blank username or password.
	ErrCredentialsRequired = errors.New("username and password are required")
	// ErrInvalidRole is returned for unknown roles.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service manages staff accounts.
type Service struct {
	users repository.UserRepository
}

// NewService creates a user service.
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users}
}

// CreateUser hashes the password and stores a new account.
func (s *Service) CreateUser(ctx context.Context, username, password, role string, permissions map[string]bool) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrCredentialsRequired
	}
	if !domain.ValidRole(role) {
		return domain.User{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.Create(ctx, domain.NewUser(username, string(hash), role, permissions))
}

// Authenticate checks a username/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers returns all staff accounts.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	_, err = s.CreateUser(ctx, username, password, domain.RoleAdmin, map[string]bool{"all": true})
	return err
}
