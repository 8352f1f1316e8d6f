package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// Invoice is a receivable document issued to a customer.
type Invoice struct {
	PayableCore
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string     `gorm:"type:varchar(200);not null"`
	Terms        string     `gorm:"type:varchar(100)"`
	// SentAt is set when the invoice is delivered to the customer.
	SentAt *time.Time
}

func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice with no lines. Totals start at zero and are
// recomputed when lines are set.
func NewInvoice(number, customerName string, date time.Time, dueDate *time.Time) (*Invoice, error) {
	if customerName == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Customer name cannot be empty")
	}
	core, err := newDocumentCore(number, date)
	if err != nil {
		return nil, err
	}
	if dueDate != nil && dueDate.Before(date) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Due date cannot be before the invoice date")
	}
	inv := &Invoice{
		PayableCore: PayableCore{
			DocumentCore:    core,
			DueDate:         dueDate,
			PaymentsApplied: decimal.Zero,
			BalanceDue:      decimal.Zero,
			Status:          PayableStatusUnpaid,
		},
		CustomerName: customerName,
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv.ID, number, customerName))
	return inv, nil
}

// MarkSent records delivery. Sending an already-sent invoice is a no-op.
func (i *Invoice) MarkSent(now time.Time) {
	if i.SentAt != nil {
		return
	}
	i.SentAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()
}

// EnsureDeletable rejects deletion once payments have been applied.
func (i *Invoice) EnsureDeletable() error {
	if i.PaymentsApplied.GreaterThan(decimal.Zero) {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Cannot delete an invoice with applied payments")
	}
	return nil
}
