package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// Bill is a payable document received from a supplier.
type Bill struct {
	PayableCore
	SupplierID   *uuid.UUID `gorm:"type:uuid;index"`
	SupplierName string     `gorm:"type:varchar(200);not null"`
	// SupplierInvoiceNo is the supplier's own document number, kept for
	// duplicate detection and statement matching.
	SupplierInvoiceNo string `gorm:"type:varchar(100);index"`
}

func (Bill) TableName() string {
	return "bills"
}

func NewBill(number, supplierName string, date time.Time, dueDate *time.Time) (*Bill, error) {
	if supplierName == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Supplier name cannot be empty")
	}
	core, err := newDocumentCore(number, date)
	if err != nil {
		return nil, err
	}
	if dueDate != nil && dueDate.Before(date) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Due date cannot be before the bill date")
	}
	b := &Bill{
		PayableCore: PayableCore{
			DocumentCore:    core,
			DueDate:         dueDate,
			PaymentsApplied: decimal.Zero,
			BalanceDue:      decimal.Zero,
			Status:          PayableStatusUnpaid,
		},
		SupplierName: supplierName,
	}
	b.AddDomainEvent(NewBillCreatedEvent(b.ID, number, supplierName))
	return b, nil
}

// EnsureDeletable rejects deletion once payments have been applied.
func (b *Bill) EnsureDeletable() error {
	if b.PaymentsApplied.GreaterThan(decimal.Zero) {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Cannot delete a bill with applied payments")
	}
	return nil
}
