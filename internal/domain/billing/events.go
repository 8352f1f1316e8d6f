package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// Event types for the billing context
const (
	EventTypeInvoiceCreated = "billing.invoice.created"
	EventTypeInvoicePaid    = "billing.invoice.paid"
	EventTypeBillCreated    = "billing.bill.created"
)

// InvoiceCreatedEvent is raised when an invoice is recorded
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number       string `json:"number"`
	CustomerName string `json:"customer_name"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(id uuid.UUID, number, customerName string) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", id),
		Number:          number,
		CustomerName:    customerName,
	}
}

// InvoicePaidEvent is raised when applied payments fully settle an invoice
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID),
		Number:          inv.Number,
		TotalAmount:     inv.TotalAmount,
	}
}

// BillCreatedEvent is raised when a supplier bill is recorded
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	Number       string `json:"number"`
	SupplierName string `json:"supplier_name"`
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(id uuid.UUID, number, supplierName string) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCreated, "Bill", id),
		Number:          number,
		SupplierName:    supplierName,
	}
}
