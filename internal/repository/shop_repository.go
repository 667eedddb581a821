package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/medipos/rms-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type shopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository wires a repository backed by pgxpool.
func NewShopRepository(pool *pgxpool.Pool) ShopRepository {
	return &shopRepository{pool: pool}
}

func (r *shopRepository) Get(ctx context.Context) (domain.Shop, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, address, phone, email, license_number, gst_number, created_at, updated_at
		 FROM shop LIMIT 1`,
	)

	var shop domain.Shop
	err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.Address,
		&shop.Phone,
		&shop.Email,
		&shop.LicenseNumber,
		&shop.GSTNumber,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Shop{}, ErrNotFound
		}
		return domain.Shop{}, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

func (r *shopRepository) Upsert(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	existing, err := r.Get(ctx)
	switch {
	case err == nil:
		shop.ID = existing.ID
		shop.CreatedAt = existing.CreatedAt
		_, err = r.pool.Exec(
			ctx,
			`UPDATE shop
			 SET name = $2, address = $3, phone = $4, email = $5, license_number = $6,
			     gst_number = $7, updated_at = now()
			 WHERE id = $1`,
			shop.ID,
			shop.Name,
			shop.Address,
			shop.Phone,
			shop.Email,
			shop.LicenseNumber,
			shop.GSTNumber,
		)
		if err != nil {
			return domain.Shop{}, fmt.Errorf("failed to update shop: %w", err)
		}
	case errors.Is(err, ErrNotFound):
		_, err = r.pool.Exec(
			ctx,
			`INSERT INTO shop (id, name, address, phone, email, license_number, gst_number, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			shop.ID,
			shop.Name,
			shop.Address,
			shop.Phone,
			shop.Email,
			shop.LicenseNumber,
			shop.GSTNumber,
			shop.CreatedAt,
			shop.UpdatedAt,
		)
		if err != nil {
			return domain.Shop{}, fmt.Errorf("failed to create shop: %w", err)
		}
	default:
		return domain.Shop{}, err
	}

	return r.Get(ctx)
}

func (r *shopRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM shop`); err != nil {
		return fmt.Errorf("failed to clear shop: %w", err)
	}
	return nil
}
