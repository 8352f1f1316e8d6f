package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository provides access to invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindByStatus(ctx context.Context, status PayableStatus) ([]Invoice, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber generates the next INV-NNNNNN number.
	NextNumber(ctx context.Context) (string, error)
}

// BillRepository provides access to supplier bills
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByNumber(ctx context.Context, number string) (*Bill, error)
	FindByStatus(ctx context.Context, status PayableStatus) ([]Bill, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Bill, error)
	Save(ctx context.Context, bill *Bill) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber generates the next BILL-NNNNNN number.
	NextNumber(ctx context.Context) (string, error)
}

// PurchaseOrderRepository provides access to purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	FindByStatus(ctx context.Context, status PurchaseOrderStatus) ([]PurchaseOrder, error)
	Save(ctx context.Context, po *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber generates the next PO-NNNNNN number.
	NextNumber(ctx context.Context) (string, error)
}

// QuotationRepository provides access to quotations
type QuotationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)
	FindByNumber(ctx context.Context, number string) (*Quotation, error)
	FindByStatus(ctx context.Context, status QuotationStatus) ([]Quotation, error)
	Save(ctx context.Context, quote *Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber generates the next QT-NNNNNN number.
	NextNumber(ctx context.Context) (string, error)
}
