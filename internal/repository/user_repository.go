package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository wires a repository backed by pgxpool.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	permissionsJSON, err := json.Marshal(user.Permissions)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to marshal permissions: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, password_hash, role, permissions, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Role,
		permissionsJSON,
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, role, permissions, is_active, created_at
		 FROM users WHERE username = $1`,
		username,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, password_hash, role, permissions, is_active, created_at
		 FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user            domain.User
		permissionsJSON []byte
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&permissionsJSON,
		&user.IsActive,
		&user.CreatedAt,
	); err != nil {
		return domain.User{}, err
	}
	if len(permissionsJSON) > 0 {
		if err := json.Unmarshal(permissionsJSON, &user.Permissions); err != nil {
			return domain.User{}, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}
	return user, nil
}
