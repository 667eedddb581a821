package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type saleRepository struct {
	pool *pgxpool.Pool
}

// NewSaleRepository wires a repository backed by pgxpool.
func NewSaleRepository(pool *pgxpool.Pool) SaleRepository {
	return &saleRepository{pool: pool}
}

func (r *saleRepository) Create(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("failed to marshal sale items: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO sales (id, receipt_number, items, total_amount, payment_method,
			customer_name, customer_phone, cashier_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sale.ID,
		sale.ReceiptNumber,
		itemsJSON,
		sale.TotalAmount,
		sale.PaymentMethod,
		sale.CustomerName,
		sale.CustomerPhone,
		sale.CashierID,
		sale.CreatedAt,
	)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("failed to create sale: %w", err)
	}
	return sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]domain.Sale, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, receipt_number, items, total_amount, payment_method,
		customer_name, customer_phone, cashier_id, created_at
	 FROM sales WHERE 1=1`
	args := []any{}

	if !filter.Start.IsZero() {
		args = append(args, filter.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.End.IsZero() {
		args = append(args, filter.End)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	if filter.MedicineName != "" {
		args = append(args, filter.MedicineName)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(items) item
			WHERE item->>'medicine_name' ILIKE '%%' || $%d || '%%')`, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

func (r *saleRepository) ListAll(ctx context.Context) ([]domain.Sale, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, receipt_number, items, total_amount, payment_method,
			customer_name, customer_phone, cashier_id, created_at
		 FROM sales ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

func (r *saleRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sales`); err != nil {
		return fmt.Errorf("failed to clear sales: %w", err)
	}
	return nil
}

func collectSales(rows pgx.Rows) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	for rows.Next() {
		var (
			sale      domain.Sale
			itemsJSON []byte
		)
		if err := rows.Scan(
			&sale.ID,
			&sale.ReceiptNumber,
			&itemsJSON,
			&sale.TotalAmount,
			&sale.PaymentMethod,
			&sale.CustomerName,
			&sale.CustomerPhone,
			&sale.CashierID,
			&sale.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &sale.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sale items: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}
	return sales, nil
}
