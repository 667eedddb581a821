package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type backupRepository struct {
	pool *pgxpool.Pool
}

// NewBackupRepository wires a repository backed by pgxpool.
func NewBackupRepository(pool *pgxpool.Pool) BackupRepository {
	return &backupRepository{pool: pool}
}

func (r *backupRepository) Create(ctx context.Context, meta domain.BackupMetadata, payload []byte) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO backups (id, name, data_categories, total_records, file_size, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meta.ID,
		meta.Name,
		meta.DataCategories,
		meta.TotalRecords,
		meta.FileSize,
		payload,
		meta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func (r *backupRepository) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, data_categories, total_records, file_size, created_at
		 FROM backups ORDER BY created_at DESC LIMIT 100`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	defer rows.Close()

	backups := []domain.BackupMetadata{}
	for rows.Next() {
		meta, err := scanBackupMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		backups = append(backups, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate backups: %w", err)
	}
	return backups, nil
}

func (r *backupRepository) GetMetadata(ctx context.Context, id uuid.UUID) (domain.BackupMetadata, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, data_categories, total_records, file_size, created_at
		 FROM backups WHERE id = $1`,
		id,
	)
	meta, err := scanBackupMetadata(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BackupMetadata{}, ErrNotFound
		}
		return domain.BackupMetadata{}, fmt.Errorf("failed to get backup: %w", err)
	}
	return meta, nil
}

func (r *backupRepository) GetPayload(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM backups WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get backup payload: %w", err)
	}
	return payload, nil
}

func (r *backupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM backups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBackupMetadata(row pgx.Row) (domain.BackupMetadata, error) {
	var meta domain.BackupMetadata
	err := row.Scan(
		&meta.ID,
		&meta.Name,
		&meta.DataCategories,
		&meta.TotalRecords,
		&meta.FileSize,
		&meta.CreatedAt,
	)
	return meta, err
}
