package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/smbledger/backend/internal/domain/shared"
)

// PurchaseOrderStatus tracks the fulfilment state of an order to a supplier
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen      PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusClosed    PurchaseOrderStatus = "CLOSED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusOpen, PurchaseOrderStatusReceived,
		PurchaseOrderStatusClosed, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder records goods ordered from a supplier. It carries no payment
// state; settlement happens on the bill raised against it.
type PurchaseOrder struct {
	DocumentCore
	SupplierID   *uuid.UUID          `gorm:"type:uuid;index"`
	SupplierName string              `gorm:"type:varchar(200);not null"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	ExpectedDate *time.Time
	// BillID links the bill raised when the order was received.
	BillID *uuid.UUID `gorm:"type:uuid;index"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

func NewPurchaseOrder(number, supplierName string, date time.Time) (*PurchaseOrder, error) {
	if supplierName == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Supplier name cannot be empty")
	}
	core, err := newDocumentCore(number, date)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrder{
		DocumentCore: core,
		SupplierName: supplierName,
		Status:       PurchaseOrderStatusOpen,
	}, nil
}

// CanReceive reports whether the order can currently be received, without
// mutating it.
func (p *PurchaseOrder) CanReceive() error {
	if p.Status != PurchaseOrderStatusOpen {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only open purchase orders can be received")
	}
	return nil
}

// MarkReceived records goods receipt and links the bill raised for it.
func (p *PurchaseOrder) MarkReceived(billID uuid.UUID, now time.Time) error {
	if err := p.CanReceive(); err != nil {
		return err
	}
	p.Status = PurchaseOrderStatusReceived
	p.BillID = &billID
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

func (p *PurchaseOrder) Close(now time.Time) error {
	if p.Status != PurchaseOrderStatusReceived {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only received purchase orders can be closed")
	}
	p.Status = PurchaseOrderStatusClosed
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

func (p *PurchaseOrder) Cancel(now time.Time) error {
	if p.Status != PurchaseOrderStatusOpen {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only open purchase orders can be cancelled")
	}
	p.Status = PurchaseOrderStatusCancelled
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}
