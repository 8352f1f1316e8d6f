package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// StockMovementType classifies a stock delta and fixes its direction
type StockMovementType string

const (
	StockMovementIn         StockMovementType = "IN"
	StockMovementOut        StockMovementType = "OUT"
	StockMovementSale       StockMovementType = "SALE"
	StockMovementPurchase   StockMovementType = "PURCHASE"
	StockMovementAdjustment StockMovementType = "ADJUSTMENT"
)

// IsValid checks if the movement type is valid
func (t StockMovementType) IsValid() bool {
	switch t {
	case StockMovementIn, StockMovementOut, StockMovementSale,
		StockMovementPurchase, StockMovementAdjustment:
		return true
	}
	return false
}

// IsInbound reports whether the type adds stock. Adjustments carry their own
// sign in Quantity.
func (t StockMovementType) IsInbound() bool {
	return t == StockMovementIn || t == StockMovementPurchase
}

// StockMovement is one row of the append-only stock ledger. Movements are
// never edited or deleted; corrections are new adjustment rows. An item's
// on-hand quantity equals its opening quantity plus the signed sum of its
// movements.
type StockMovement struct {
	ID       uuid.UUID         `gorm:"type:uuid;primary_key"`
	ItemID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type     StockMovementType `gorm:"type:varchar(20);not null;index"`
	Date     time.Time         `gorm:"not null;index"`
	Quantity decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitCost decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Memo     string            `gorm:"type:varchar(500)"`
	// Source document reference, e.g. an invoice or bill line.
	SourceType string     `gorm:"type:varchar(30);index"`
	SourceID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"not null"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records a stock delta. Quantity must be positive except
// for adjustments, which may be signed either way.
func NewStockMovement(itemID uuid.UUID, movementType StockMovementType, date time.Time, quantity, unitCost decimal.Decimal) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Invalid stock movement type: "+string(movementType))
	}
	if movementType != StockMovementAdjustment && quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Movement quantity must be positive")
	}
	if movementType == StockMovementAdjustment && quantity.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Adjustment quantity cannot be zero")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Unit cost cannot be negative")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Movement date is required")
	}
	return &StockMovement{
		ID:        uuid.New(),
		ItemID:    itemID,
		Type:      movementType,
		Date:      date,
		Quantity:  quantity,
		UnitCost:  unitCost.Round(2),
		CreatedAt: time.Now(),
	}, nil
}

// WithSource links the movement to the document line that caused it
func (m *StockMovement) WithSource(sourceType string, sourceID uuid.UUID) *StockMovement {
	m.SourceType = sourceType
	m.SourceID = &sourceID
	return m
}

// SignedQuantity returns the delta to apply to on-hand: positive for inbound
// types, negative for outbound, as-recorded for adjustments.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	switch {
	case m.Type == StockMovementAdjustment:
		return m.Quantity
	case m.Type.IsInbound():
		return m.Quantity
	default:
		return m.Quantity.Neg()
	}
}
