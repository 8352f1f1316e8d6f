package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/domain/shared"
)

// saveDocumentLines replaces the line items of a document. Lines carry no
// identity beyond their document, so delete-and-reinsert keeps edits simple.
func saveDocumentLines(tx *gorm.DB, documentID uuid.UUID, lines []billing.LineItem) error {
	if err := tx.Where("document_id = ?", documentID).Delete(&billing.LineItem{}).Error; err != nil {
		return err
	}
	for i := range lines {
		if err := tx.Create(&lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_number ASC")
	})
}

// ===== Invoices =====

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := preloadLines(dbFor(ctx, r.db)).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its INV-NNNNNN number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := preloadLines(dbFor(ctx, r.db)).First(&invoice, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByStatus returns invoices in one payable state
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, status billing.PayableStatus) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("status = ?", status).
		Order("date ASC, number ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByDateRange returns invoices dated within the window
func (r *GormInvoiceRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save persists an invoice and replaces its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(invoice).Error; err != nil {
			return err
		}
		return saveDocumentLines(tx, invoice.ID, invoice.Lines)
	})
}

// Delete removes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextNumber generates the next INV-NNNNNN number
func (r *GormInvoiceRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "invoices", "number", billing.InvoiceNumbers)
}

// ===== Bills =====

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill with its lines
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var bill billing.Bill
	if err := preloadLines(dbFor(ctx, r.db)).First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

// FindByNumber finds a bill by its BILL-NNNNNN number
func (r *GormBillRepository) FindByNumber(ctx context.Context, number string) (*billing.Bill, error) {
	var bill billing.Bill
	if err := preloadLines(dbFor(ctx, r.db)).First(&bill, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bill, nil
}

// FindByStatus returns bills in one payable state
func (r *GormBillRepository) FindByStatus(ctx context.Context, status billing.PayableStatus) ([]billing.Bill, error) {
	var bills []billing.Bill
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("status = ?", status).
		Order("date ASC, number ASC").
		Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// FindByDateRange returns bills dated within the window
func (r *GormBillRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]billing.Bill, error) {
	var bills []billing.Bill
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, number ASC").
		Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// Save persists a bill and replaces its line items
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(bill).Error; err != nil {
			return err
		}
		return saveDocumentLines(tx, bill.ID, bill.Lines)
	})
}

// Delete removes a bill and its lines
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Bill{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextNumber generates the next BILL-NNNNNN number
func (r *GormBillRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "bills", "number", billing.BillNumbers)
}

// ===== Purchase orders =====

// GormPurchaseOrderRepository implements billing.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PurchaseOrder, error) {
	var po billing.PurchaseOrder
	if err := preloadLines(dbFor(ctx, r.db)).First(&po, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

// FindByNumber finds a purchase order by its PO-NNNNNN number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*billing.PurchaseOrder, error) {
	var po billing.PurchaseOrder
	if err := preloadLines(dbFor(ctx, r.db)).First(&po, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

// FindByStatus returns purchase orders in one lifecycle state
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status billing.PurchaseOrderStatus) ([]billing.PurchaseOrder, error) {
	var pos []billing.PurchaseOrder
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("status = ?", status).
		Order("date ASC, number ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// Save persists a purchase order and replaces its line items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *billing.PurchaseOrder) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(po).Error; err != nil {
			return err
		}
		return saveDocumentLines(tx, po.ID, po.Lines)
	})
}

// Delete removes a purchase order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextNumber generates the next PO-NNNNNN number
func (r *GormPurchaseOrderRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "purchase_orders", "number", billing.PurchaseOrderNumbers)
}

// ===== Quotations =====

// GormQuotationRepository implements billing.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation with its lines
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quotation, error) {
	var quote billing.Quotation
	if err := preloadLines(dbFor(ctx, r.db)).First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// FindByNumber finds a quotation by its QT-NNNNNN number
func (r *GormQuotationRepository) FindByNumber(ctx context.Context, number string) (*billing.Quotation, error) {
	var quote billing.Quotation
	if err := preloadLines(dbFor(ctx, r.db)).First(&quote, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// FindByStatus returns quotations in one lifecycle state
func (r *GormQuotationRepository) FindByStatus(ctx context.Context, status billing.QuotationStatus) ([]billing.Quotation, error) {
	var quotes []billing.Quotation
	if err := preloadLines(dbFor(ctx, r.db)).
		Where("status = ?", status).
		Order("date ASC, number ASC").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save persists a quotation and replaces its line items
func (r *GormQuotationRepository) Save(ctx context.Context, quote *billing.Quotation) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(quote).Error; err != nil {
			return err
		}
		return saveDocumentLines(tx, quote.ID, quote.Lines)
	})
}

// Delete removes a quotation and its lines
func (r *GormQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&billing.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Quotation{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextNumber generates the next QT-NNNNNN number
func (r *GormQuotationRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "quotations", "number", billing.QuotationNumbers)
}
