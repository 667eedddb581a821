package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stockMovementRepository struct {
	pool *pgxpool.Pool
}

// NewStockMovementRepository wires a repository backed by pgxpool.
func NewStockMovementRepository(pool *pgxpool.Pool) StockMovementRepository {
	return &stockMovementRepository{pool: pool}
}

func (r *stockMovementRepository) Record(ctx context.Context, movement domain.StockMovement) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO stock_movements (id, medicine_id, medicine_name, movement_type,
			quantity_change, previous_stock, new_stock, reference_id, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		movement.ID,
		movement.MedicineID,
		movement.MedicineName,
		movement.MovementType,
		movement.QuantityChange,
		movement.PreviousStock,
		movement.NewStock,
		movement.ReferenceID,
		movement.Notes,
		movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

func (r *stockMovementRepository) ListByMedicine(ctx context.Context, medicineID uuid.UUID, since time.Time) ([]domain.StockMovement, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, medicine_id, medicine_name, movement_type, quantity_change,
			previous_stock, new_stock, reference_id, notes, created_at
		 FROM stock_movements
		 WHERE medicine_id = $1 AND created_at >= $2
		 ORDER BY created_at`,
		medicineID,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockMovementRepository) ListAll(ctx context.Context) ([]domain.StockMovement, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, medicine_id, medicine_name, movement_type, quantity_change,
			previous_stock, new_stock, reference_id, notes, created_at
		 FROM stock_movements ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockMovementRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM stock_movements`); err != nil {
		return fmt.Errorf("failed to clear stock movements: %w", err)
	}
	return nil
}

func collectMovements(rows pgx.Rows) ([]domain.StockMovement, error) {
	movements := []domain.StockMovement{}
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.ID,
			&m.MedicineID,
			&m.MedicineName,
			&m.MovementType,
			&m.QuantityChange,
			&m.PreviousStock,
			&m.NewStock,
			&m.ReferenceID,
			&m.Notes,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock movements: %w", err)
	}
	return movements, nil
}
