package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement types.
const (
	MovementAddition   = "addition"
	MovementSale       = "sale"
	MovementReturn     = "return"
	MovementAdjustment = "adjustment"
)

// StockMovement records one change to a medicine's stock level.
type StockMovement struct {
	ID             uuid.UUID `json:"id"`
	MedicineID     uuid.UUID `json:"medicine_id"`
	MedicineName   string    `json:"medicine_name"`
	MovementType   string    `json:"movement_type"`
	QuantityChange int       `json:"quantity_change"`
	PreviousStock  int       `json:"previous_stock"`
	NewStock       int       `json:"new_stock"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStockMovement records a transition from previous to new stock.
func NewStockMovement(medicineID uuid.UUID, medicineName, movementType string, previous, next int, referenceID, notes string) StockMovement {
	return StockMovement{
		ID:             uuid.New(),
		MedicineID:     medicineID,
		MedicineName:   medicineName,
		MovementType:   movementType,
		QuantityChange: next - previous,
		PreviousStock:  previous,
		NewStock:       next,
		ReferenceID:    referenceID,
		Notes:          notes,
		CreatedAt:      time.Now().UTC(),
	}
}
