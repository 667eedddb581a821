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

type medicineRepository struct {
	pool *pgxpool.Pool
}

// NewMedicineRepository wires a repository backed by pgxpool.
func NewMedicineRepository(pool *pgxpool.Pool) MedicineRepository {
	return &medicineRepository{pool: pool}
}

const medicineColumns = `id, name, price, stock_quantity, expiry_date, batch_number, supplier,
	barcode, category, unit, low_stock_threshold, expiry_alert_days, notifications_enabled,
	created_at, updated_at`

func (r *medicineRepository) Create(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO medicines (id, name, price, stock_quantity, expiry_date, batch_number, supplier,
			barcode, category, unit, low_stock_threshold, expiry_alert_days, notifications_enabled,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		medicine.ID,
		medicine.Name,
		medicine.Price,
		medicine.StockQuantity,
		medicine.ExpiryDate,
		medicine.BatchNumber,
		medicine.Supplier,
		medicine.Barcode,
		medicine.Category,
		medicine.Unit,
		medicine.LowStockThreshold,
		medicine.ExpiryAlertDays,
		medicine.NotificationsEnabled,
		medicine.CreatedAt,
		medicine.UpdatedAt,
	)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to create medicine: %w", err)
	}
	return medicine, nil
}

func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Medicine, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = $1`,
		id,
	)
	medicine, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Medicine{}, ErrNotFound
		}
		return domain.Medicine{}, fmt.Errorf("failed to get medicine: %w", err)
	}
	return medicine, nil
}

func (r *medicineRepository) List(ctx context.Context, search string, limit int) ([]domain.Medicine, error) {
	if limit <= 0 {
		limit = 1000
	}

	var (
		rows pgx.Rows
		err  error
	)
	if search != "" {
		rows, err = r.pool.Query(
			ctx,
			`SELECT `+medicineColumns+` FROM medicines
			 WHERE name ILIKE '%' || $1 || '%' OR barcode ILIKE '%' || $1 || '%'
			 ORDER BY name
			 LIMIT $2`,
			search,
			limit,
		)
	} else {
		rows, err = r.pool.Query(
			ctx,
			`SELECT `+medicineColumns+` FROM medicines ORDER BY name LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()

	return collectMedicines(rows)
}

func (r *medicineRepository) ListAll(ctx context.Context) ([]domain.Medicine, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+medicineColumns+` FROM medicines ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	defer rows.Close()

	return collectMedicines(rows)
}

func (r *medicineRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM medicines`)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicine names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan medicine name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medicine names: %w", err)
	}
	return names, nil
}

func (r *medicineRepository) Update(ctx context.Context, medicine domain.Medicine) (domain.Medicine, error) {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE medicines
		 SET name = $2, price = $3, stock_quantity = $4, expiry_date = $5, batch_number = $6,
		     supplier = $7, barcode = $8, category = $9, unit = $10, low_stock_threshold = $11,
		     expiry_alert_days = $12, notifications_enabled = $13, updated_at = now()
		 WHERE id = $1`,
		medicine.ID,
		medicine.Name,
		medicine.Price,
		medicine.StockQuantity,
		medicine.ExpiryDate,
		medicine.BatchNumber,
		medicine.Supplier,
		medicine.Barcode,
		medicine.Category,
		medicine.Unit,
		medicine.LowStockThreshold,
		medicine.ExpiryAlertDays,
		medicine.NotificationsEnabled,
	)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("failed to update medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Medicine{}, ErrNotFound
	}
	return r.GetByID(ctx, medicine.ID)
}

func (r *medicineRepository) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE medicines SET stock_quantity = $2, updated_at = now() WHERE id = $1`,
		id,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete medicine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM medicines`); err != nil {
		return fmt.Errorf("failed to clear medicines: %w", err)
	}
	return nil
}

func scanMedicine(row pgx.Row) (domain.Medicine, error) {
	var m domain.Medicine
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Price,
		&m.StockQuantity,
		&m.ExpiryDate,
		&m.BatchNumber,
		&m.Supplier,
		&m.Barcode,
		&m.Category,
		&m.Unit,
		&m.LowStockThreshold,
		&m.ExpiryAlertDays,
		&m.NotificationsEnabled,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func collectMedicines(rows pgx.Rows) ([]domain.Medicine, error) {
	medicines := []domain.Medicine{}
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		medicines = append(medicines, medicine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medicines: %w", err)
	}
	return medicines, nil
}
