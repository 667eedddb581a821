package repository

import (
	"context"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type importLogRepository struct {
	pool *pgxpool.Pool
}

// NewImportLogRepository wires a repository backed by pgxpool.
func NewImportLogRepository(pool *pgxpool.Pool) ImportLogRepository {
	return &importLogRepository{pool: pool}
}

func (r *importLogRepository) Record(ctx context.Context, entry domain.ImportLog) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO import_logs (id, file_name, duplicate_handling, validation_strict,
			total_processed, imported, skipped, errors, duplicates_handled, imported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.FileName,
		entry.DuplicateHandling,
		entry.ValidationStrict,
		entry.TotalProcessed,
		entry.Imported,
		entry.Skipped,
		entry.Errors,
		entry.DuplicatesHandled,
		entry.ImportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}
	return nil
}

func (r *importLogRepository) List(ctx context.Context, limit int) ([]domain.ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, duplicate_handling, validation_strict, total_processed,
			imported, skipped, errors, duplicates_handled, imported_at
		 FROM import_logs
		 ORDER BY imported_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	return collectImportLogs(rows)
}

func (r *importLogRepository) ListAll(ctx context.Context) ([]domain.ImportLog, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_name, duplicate_handling, validation_strict, total_processed,
			imported, skipped, errors, duplicates_handled, imported_at
		 FROM import_logs ORDER BY imported_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	return collectImportLogs(rows)
}

func (r *importLogRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM import_logs`); err != nil {
		return fmt.Errorf("failed to clear import logs: %w", err)
	}
	return nil
}

func collectImportLogs(rows pgx.Rows) ([]domain.ImportLog, error) {
	logs := []domain.ImportLog{}
	for rows.Next() {
		var entry domain.ImportLog
		if err := rows.Scan(
			&entry.ID,
			&entry.FileName,
			&entry.DuplicateHandling,
			&entry.ValidationStrict,
			&entry.TotalProcessed,
			&entry.Imported,
			&entry.Skipped,
			&entry.Errors,
			&entry.DuplicatesHandled,
			&entry.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import logs: %w", err)
	}
	return logs, nil
}
