package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// LineItem is one row of a billable document. Amount, tax and discount are
// recomputed from quantity/price/rates on every save, never trusted from the
// caller.
type LineItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID         *uuid.UUID      `gorm:"type:uuid;index"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	DiscountRate   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineNumber     int             `gorm:"not null"`
}

// LineItemInput is the caller-supplied shape of one document line
type LineItemInput struct {
	ItemID       *uuid.UUID
	Description  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
}

// NewLineItem builds a line with its derived amounts computed:
// amount = quantity * unit_price, tax = amount * tax_rate/100,
// discount = amount * discount_rate/100.
func NewLineItem(documentID uuid.UUID, lineNumber int, in LineItemInput) (*LineItem, error) {
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation,
			fmt.Sprintf("Line %d: quantity must be positive", lineNumber))
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation,
			fmt.Sprintf("Line %d: unit price cannot be negative", lineNumber))
	}
	if in.TaxRate.IsNegative() || in.DiscountRate.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation,
			fmt.Sprintf("Line %d: rates cannot be negative", lineNumber))
	}

	l := &LineItem{
		ID:           uuid.New(),
		DocumentID:   documentID,
		ItemID:       in.ItemID,
		Description:  in.Description,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		TaxRate:      in.TaxRate,
		DiscountRate: in.DiscountRate,
		LineNumber:   lineNumber,
	}
	l.Recalculate()
	return l, nil
}

// Recalculate rederives the computed columns from the entered ones.
// Idempotent: recalculating an unchanged line changes nothing.
func (l *LineItem) Recalculate() {
	hundred := decimal.NewFromInt(100)
	l.Amount = l.Quantity.Mul(l.UnitPrice).Round(2)
	l.TaxAmount = l.Amount.Mul(l.TaxRate).Div(hundred).Round(2)
	l.DiscountAmount = l.Amount.Mul(l.DiscountRate).Div(hundred).Round(2)
}
