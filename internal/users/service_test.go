package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &stubUserRepo{}
	service := NewService(repo)

	user, err := service.CreateUser(context.Background(), "alice", "s3cret", domain.RoleCashier, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestCreateUserValidation(t *testing.T) {
	service := NewService(&stubUserRepo{})

	_, err := service.CreateUser(context.Background(), "  ", "pw", domain.RoleCashier, nil)
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	_, err = service.CreateUser(context.Background(), "bob", "", domain.RoleCashier, nil)
	assert.ErrorIs(t, err, ErrCredentialsRequired)

	_, err = service.CreateUser(context.Background(), "bob", "pw", "janitor", nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	repo := &stubUserRepo{}
	service := NewService(repo)
	_, err := service.CreateUser(context.Background(), "alice", "s3cret", domain.RoleAdmin, nil)
	require.NoError(t, err)

	user, err := service.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = service.Authenticate(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveAccount(t *testing.T) {
	repo := &stubUserRepo{}
	service := NewService(repo)
	_, err := service.CreateUser(context.Background(), "alice", "s3cret", domain.RoleAdmin, nil)
	require.NoError(t, err)
	repo.users[0].IsActive = false

	_, err = service.Authenticate(context.Background(), "alice", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	repo := &stubUserRepo{}
	service := NewService(repo)

	require.NoError(t, service.EnsureAdmin(context.Background(), "admin", "changeme"))
	require.Len(t, repo.users, 1)
	assert.Equal(t, domain.RoleAdmin, repo.users[0].Role)
	assert.True(t, repo.users[0].Permissions["all"])

	// A second call must not create a duplicate.
	require.NoError(t, service.EnsureAdmin(context.Background(), "admin", "changeme"))
	assert.Len(t, repo.users, 1)

	// Unconfigured credentials are a no-op.
	require.NoError(t, service.EnsureAdmin(context.Background(), "", ""))
	assert.Len(t, repo.users, 1)
}

type stubUserRepo struct {
	users []domain.User
}

func (s *stubUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	s.users = append(s.users, user)
	return user, nil
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (s *stubUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return s.users, nil
}
