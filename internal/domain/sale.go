package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at the counter.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentUPI  = "upi"
)

// ValidPaymentMethod reports whether method is one of the accepted values.
func ValidPaymentMethod(method string) bool {
	return method == PaymentCash || method == PaymentCard || method == PaymentUPI
}

// SaleItem is one line of a sale. Items are persisted as a JSONB array on the
// sale row, so the struct doubles as the wire and storage shape.
type SaleItem struct {
	MedicineID   uuid.UUID `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	Total        float64   `json:"total"`
}

// Sale is one completed point-of-sale transaction.
type Sale struct {
	ID            uuid.UUID  `json:"id"`
	ReceiptNumber string     `json:"receipt_number"`
	Items         []SaleItem `json:"items"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentMethod string     `json:"payment_method"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	CashierID     string     `json:"cashier_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewSale creates a sale with a generated receipt number.
func NewSale(items []SaleItem, totalAmount float64, paymentMethod, customerName, customerPhone, cashierID string) Sale {
	now := time.Now().UTC()
	return Sale{
		ID:            uuid.New(),
		ReceiptNumber: fmt.Sprintf("RCP%d", now.Unix()),
		Items:         items,
		TotalAmount:   totalAmount,
		PaymentMethod: paymentMethod,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		CashierID:     cashierID,
		CreatedAt:     now,
	}
}
