package domain

import (
	"time"

	"github.com/google/uuid"
)

// Medicine represents one inventory item. Expiry dates are kept as ISO
// calendar date strings (YYYY-MM-DD) end to end.
type Medicine struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Price                float64   `json:"price"`
	StockQuantity        int       `json:"stock_quantity"`
	ExpiryDate           string    `json:"expiry_date"`
	BatchNumber          string    `json:"batch_number"`
	Supplier             string    `json:"supplier"`
	Barcode              string    `json:"barcode"`
	Category             string    `json:"category"`
	Unit                 string    `json:"unit"`
	LowStockThreshold    int       `json:"low_stock_threshold"`
	ExpiryAlertDays      int       `json:"expiry_alert_days"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewMedicine creates a medicine with default notification settings.
func NewMedicine(name string, price float64, stockQuantity int, expiryDate, batchNumber, supplier, barcode string) Medicine {
	now := time.Now().UTC()
	return Medicine{
		ID:                   uuid.New(),
		Name:                 name,
		Price:                price,
		StockQuantity:        stockQuantity,
		ExpiryDate:           expiryDate,
		BatchNumber:          batchNumber,
		Supplier:             supplier,
		Barcode:              barcode,
		LowStockThreshold:    10,
		ExpiryAlertDays:      30,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// WithStock returns a copy with an updated stock level.
func (m Medicine) WithStock(quantity int) Medicine {
	m.StockQuantity = quantity
	m.UpdatedAt = time.Now().UTC()
	return m
}

// DaysToExpiry returns the number of whole days between today and the expiry
// date, negative when already expired. The second return is false when the
// expiry date is blank or unparseable.
func (m Medicine) DaysToExpiry(today time.Time) (int, bool) {
	if m.ExpiryDate == "" {
		return 0, false
	}
	expiry, err := time.Parse("2006-01-02", m.ExpiryDate)
	if err != nil {
		return 0, false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(day).Hours() / 24), true
}
