package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// DocumentCore carries the fields and totals arithmetic shared by every
// billable document. Header totals are recomputed from the lines on every
// save: total = subtotal + tax - discount + shipping.
type DocumentCore struct {
	shared.BaseAggregateRoot
	Number         string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Date           time.Time       `gorm:"not null;index"`
	Reference      string          `gorm:"type:varchar(100)"`
	Memo           string          `gorm:"type:varchar(1000)"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	// HeaderDiscount is a document-level discount added on top of the
	// per-line discounts.
	HeaderDiscount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BranchID       *uuid.UUID      `gorm:"type:uuid;index"`
	Lines          []LineItem      `gorm:"foreignKey:DocumentID;references:ID"`
}

func newDocumentCore(number string, date time.Time) (DocumentCore, error) {
	if number == "" {
		return DocumentCore{}, shared.NewDomainError(shared.ErrCodeValidation, "Document number cannot be empty")
	}
	if date.IsZero() {
		return DocumentCore{}, shared.NewDomainError(shared.ErrCodeValidation, "Document date is required")
	}
	return DocumentCore{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Date:              date,
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		DiscountAmount:    decimal.Zero,
		ShippingAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		HeaderDiscount:    decimal.Zero,
		Lines:             make([]LineItem, 0),
	}, nil
}

// SetLines replaces the document's lines, renumbering and recomputing each
func (d *DocumentCore) SetLines(inputs []LineItemInput) error {
	lines := make([]LineItem, 0, len(inputs))
	for i, in := range inputs {
		l, err := NewLineItem(d.ID, i+1, in)
		if err != nil {
			return err
		}
		lines = append(lines, *l)
	}
	d.Lines = lines
	d.RecalculateTotals()
	return nil
}

// SetShipping sets the header-level shipping amount
func (d *DocumentCore) SetShipping(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeValidation, "Shipping amount cannot be negative")
	}
	d.ShippingAmount = amount.Round(2)
	d.RecalculateTotals()
	return nil
}

// SetHeaderDiscount sets the document-level discount amount
func (d *DocumentCore) SetHeaderDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeValidation, "Discount amount cannot be negative")
	}
	d.HeaderDiscount = amount.Round(2)
	d.RecalculateTotals()
	return nil
}

// RecalculateTotals rederives the header totals from the lines. Idempotent:
// saving twice without line changes does not change the total.
func (d *DocumentCore) RecalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero
	for i := range d.Lines {
		d.Lines[i].Recalculate()
		subtotal = subtotal.Add(d.Lines[i].Amount)
		tax = tax.Add(d.Lines[i].TaxAmount)
		discount = discount.Add(d.Lines[i].DiscountAmount)
	}
	d.Subtotal = subtotal.Round(2)
	d.TaxAmount = tax.Round(2)
	d.DiscountAmount = discount.Add(d.HeaderDiscount).Round(2)
	d.TotalAmount = d.Subtotal.Add(d.TaxAmount).Sub(d.DiscountAmount).Add(d.ShippingAmount).Round(2)
	d.UpdatedAt = time.Now()
}

// PayableStatus is the settlement state derived from applied payments
type PayableStatus string

const (
	PayableStatusUnpaid  PayableStatus = "UNPAID"
	PayableStatusPartial PayableStatus = "PARTIAL"
	PayableStatusPaid    PayableStatus = "PAID"
)

// PayableCore extends DocumentCore for documents that collect payments
// (invoices and bills): payments_applied, balance_due, derived status.
type PayableCore struct {
	DocumentCore
	DueDate         *time.Time
	PaymentsApplied decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceDue      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          PayableStatus   `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
}

// ApplyPaymentsTotal records the sum of completed payments against the
// document and rederives balance_due and status. Called by the application
// layer whenever a linked payment is created, updated, or deleted.
func (p *PayableCore) ApplyPaymentsTotal(paymentsApplied decimal.Decimal) {
	p.PaymentsApplied = paymentsApplied.Round(2)
	p.BalanceDue = p.TotalAmount.Sub(p.PaymentsApplied).Round(2)
	switch {
	case p.PaymentsApplied.LessThanOrEqual(decimal.Zero):
		p.Status = PayableStatusUnpaid
	case p.BalanceDue.LessThanOrEqual(decimal.Zero):
		p.Status = PayableStatusPaid
	default:
		p.Status = PayableStatusPartial
	}
	p.IncrementVersion()
}

// RecalculateTotals recomputes the header totals and keeps balance_due
// consistent with the new total.
func (p *PayableCore) RecalculateTotals() {
	p.DocumentCore.RecalculateTotals()
	p.ApplyPaymentsTotal(p.PaymentsApplied)
}

// IsOverdue derives lateness from an explicit evaluation time so callers and
// tests control the clock.
func (p *PayableCore) IsOverdue(now time.Time) bool {
	if p.Status == PayableStatusPaid || p.DueDate == nil {
		return false
	}
	return now.After(*p.DueDate)
}
