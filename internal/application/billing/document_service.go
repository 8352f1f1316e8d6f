package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/banking"
	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentService provides application-level operations for billable
// documents. Totals are recomputed on every write; payment changes cascade
// into the settled document through an explicit recompute call, never
// through ORM lifecycle hooks.
type DocumentService struct {
	invoiceRepo billing.InvoiceRepository
	billRepo    billing.BillRepository
	poRepo      billing.PurchaseOrderRepository
	quoteRepo   billing.QuotationRepository
	paymentRepo banking.PaymentRepository
	logger      *zap.Logger
}

// DocumentServiceOption is a functional option for configuring DocumentService
type DocumentServiceOption func(*DocumentService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	invoiceRepo billing.InvoiceRepository,
	billRepo billing.BillRepository,
	poRepo billing.PurchaseOrderRepository,
	quoteRepo billing.QuotationRepository,
	paymentRepo banking.PaymentRepository,
	opts ...DocumentServiceOption,
) *DocumentService {
	s := &DocumentService{
		invoiceRepo: invoiceRepo,
		billRepo:    billRepo,
		poRepo:      poRepo,
		quoteRepo:   quoteRepo,
		paymentRepo: paymentRepo,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Invoices =====================

// CreateInvoiceRequest is the input for creating an invoice
type CreateInvoiceRequest struct {
	CustomerName   string                  `json:"customer_name" binding:"required"`
	CustomerID     *uuid.UUID              `json:"customer_id"`
	Date           time.Time               `json:"date" binding:"required"`
	DueDate        *time.Time              `json:"due_date"`
	Lines          []billing.LineItemInput `json:"lines" binding:"required"`
	ShippingAmount decimal.Decimal         `json:"shipping_amount"`
	HeaderDiscount decimal.Decimal         `json:"header_discount"`
	Memo           string                  `json:"memo"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	CustomerName    string          `json:"customer_name"`
	Date            time.Time       `json:"date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentsApplied decimal.Decimal `json:"payments_applied"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	Status          string          `json:"status"`
	Overdue         bool            `json:"overdue"`
	LineCount       int             `json:"line_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toInvoiceResponse(inv *billing.Invoice, now time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		CustomerName:    inv.CustomerName,
		Date:            inv.Date,
		DueDate:         inv.DueDate,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		ShippingAmount:  inv.ShippingAmount,
		TotalAmount:     inv.TotalAmount,
		PaymentsApplied: inv.PaymentsApplied,
		BalanceDue:      inv.BalanceDue,
		Status:          string(inv.Status),
		Overdue:         inv.IsOverdue(now),
		LineCount:       len(inv.Lines),
		CreatedAt:       inv.CreatedAt,
	}
}

// CreateInvoice numbers and stores an invoice with its lines and computed
// totals.
func (s *DocumentService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, now time.Time) (*InvoiceResponse, error) {
	number, err := s.invoiceRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := billing.NewInvoice(number, req.CustomerName, req.Date, req.DueDate)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = req.CustomerID
	inv.Memo = req.Memo
	if err := inv.SetLines(req.Lines); err != nil {
		return nil, err
	}
	if !req.ShippingAmount.IsZero() {
		if err := inv.SetShipping(req.ShippingAmount); err != nil {
			return nil, err
		}
	}
	if !req.HeaderDiscount.IsZero() {
		if err := inv.SetHeaderDiscount(req.HeaderDiscount); err != nil {
			return nil, err
		}
	}
	inv.ApplyPaymentsTotal(decimal.Zero)

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice created",
		zap.String("number", inv.Number),
		zap.String("total", inv.TotalAmount.StringFixed(2)))
	return toInvoiceResponse(inv, now), nil
}

// GetInvoice returns one invoice
func (s *DocumentService) GetInvoice(ctx context.Context, id uuid.UUID, now time.Time) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, now), nil
}

// UpdateInvoiceLines replaces the lines and rederives totals, balance due,
// and status against the payments already applied.
func (s *DocumentService) UpdateInvoiceLines(ctx context.Context, id uuid.UUID, lines []billing.LineItemInput, now time.Time) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.SetLines(lines); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, now), nil
}

// DeleteInvoice removes an invoice. Invoices with applied payments refuse
// deletion in the domain layer.
func (s *DocumentService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	inv, err := s.findInvoice(ctx, id)
	if err != nil {
		return err
	}
	if err := inv.EnsureDeletable(); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// ListOverdueInvoices returns unpaid and partially paid invoices past their
// due date at the given time.
func (s *DocumentService) ListOverdueInvoices(ctx context.Context, now time.Time) ([]InvoiceResponse, error) {
	overdue := make([]InvoiceResponse, 0)
	for _, status := range []billing.PayableStatus{billing.PayableStatusUnpaid, billing.PayableStatusPartial} {
		invoices, err := s.invoiceRepo.FindByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		for i := range invoices {
			if invoices[i].IsOverdue(now) {
				overdue = append(overdue, *toInvoiceResponse(&invoices[i], now))
			}
		}
	}
	return overdue, nil
}

// ===================== Payment cascade =====================

// RecomputeDocumentPayments rederives a document's payments_applied from the
// sum of its completed payments and updates balance due and status. Call it
// after any payment against the document is created, completed, voided, or
// deleted.
func (s *DocumentService) RecomputeDocumentPayments(ctx context.Context, kind banking.DocumentKind, documentID uuid.UUID) error {
	payments, err := s.paymentRepo.FindByDocument(ctx, kind, documentID)
	if err != nil {
		return err
	}
	applied := decimal.Zero
	for i := range payments {
		if payments[i].Status == banking.PaymentStatusCompleted {
			applied = applied.Add(payments[i].Amount)
		}
	}

	switch kind {
	case banking.DocumentKindInvoice:
		inv, err := s.findInvoice(ctx, documentID)
		if err != nil {
			return err
		}
		wasPaid := inv.Status == billing.PayableStatusPaid
		inv.ApplyPaymentsTotal(applied)
		if !wasPaid && inv.Status == billing.PayableStatusPaid {
			inv.AddDomainEvent(billing.NewInvoicePaidEvent(inv))
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}
	case banking.DocumentKindBill:
		bill, err := s.findBill(ctx, documentID)
		if err != nil {
			return err
		}
		bill.ApplyPaymentsTotal(applied)
		if err := s.billRepo.Save(ctx, bill); err != nil {
			return err
		}
	default:
		return shared.NewDomainError(shared.ErrCodeValidation, "Document kind does not collect payments: "+string(kind))
	}

	s.logger.Info("document payments recomputed",
		zap.String("kind", string(kind)),
		zap.Stringer("document", documentID),
		zap.String("applied", applied.StringFixed(2)))
	return nil
}

// ===================== Bills =====================

// CreateBillRequest is the input for recording a supplier bill
type CreateBillRequest struct {
	SupplierName      string                  `json:"supplier_name" binding:"required"`
	SupplierID        *uuid.UUID              `json:"supplier_id"`
	SupplierInvoiceNo string                  `json:"supplier_invoice_no"`
	Date              time.Time               `json:"date" binding:"required"`
	DueDate           *time.Time              `json:"due_date"`
	Lines             []billing.LineItemInput `json:"lines" binding:"required"`
	Memo              string                  `json:"memo"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	SupplierName    string          `json:"supplier_name"`
	Date            time.Time       `json:"date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentsApplied decimal.Decimal `json:"payments_applied"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toBillResponse(b *billing.Bill) *BillResponse {
	return &BillResponse{
		ID:              b.ID,
		Number:          b.Number,
		SupplierName:    b.SupplierName,
		Date:            b.Date,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount,
		PaymentsApplied: b.PaymentsApplied,
		BalanceDue:      b.BalanceDue,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
	}
}

// CreateBill numbers and stores a supplier bill
func (s *DocumentService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	number, err := s.billRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := billing.NewBill(number, req.SupplierName, req.Date, req.DueDate)
	if err != nil {
		return nil, err
	}
	bill.SupplierID = req.SupplierID
	bill.SupplierInvoiceNo = req.SupplierInvoiceNo
	bill.Memo = req.Memo
	if err := bill.SetLines(req.Lines); err != nil {
		return nil, err
	}
	bill.ApplyPaymentsTotal(decimal.Zero)

	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	s.logger.Info("bill recorded",
		zap.String("number", bill.Number),
		zap.String("total", bill.TotalAmount.StringFixed(2)))
	return toBillResponse(bill), nil
}

// ===================== Quotations & purchase orders =====================

// CreateQuotationRequest is the input for drafting a quotation
type CreateQuotationRequest struct {
	CustomerName string                  `json:"customer_name" binding:"required"`
	CustomerID   *uuid.UUID              `json:"customer_id"`
	Date         time.Time               `json:"date" binding:"required"`
	ExpiryDate   *time.Time              `json:"expiry_date"`
	Lines        []billing.LineItemInput `json:"lines" binding:"required"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	Date         time.Time       `json:"date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	InvoiceID    *uuid.UUID      `json:"invoice_id,omitempty"`
	LineCount    int             `json:"line_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toQuotationResponse(q *billing.Quotation) *QuotationResponse {
	return &QuotationResponse{
		ID:           q.ID,
		Number:       q.Number,
		CustomerName: q.CustomerName,
		Date:         q.Date,
		ExpiryDate:   q.ExpiryDate,
		TotalAmount:  q.TotalAmount,
		Status:       string(q.Status),
		InvoiceID:    q.InvoiceID,
		LineCount:    len(q.Lines),
		CreatedAt:    q.CreatedAt,
	}
}

// CreateQuotation numbers and stores a draft quotation
func (s *DocumentService) CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*QuotationResponse, error) {
	number, err := s.quoteRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := billing.NewQuotation(number, req.CustomerName, req.Date, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	quote.CustomerID = req.CustomerID
	if err := quote.SetLines(req.Lines); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	return toQuotationResponse(quote), nil
}

// SendQuotation marks a draft quotation as delivered to the customer
func (s *DocumentService) SendQuotation(ctx context.Context, quoteID uuid.UUID, now time.Time) (*QuotationResponse, error) {
	quote, err := s.findQuotation(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := quote.MarkSent(now); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	return toQuotationResponse(quote), nil
}

// RejectQuotation records the customer's refusal of a sent quotation
func (s *DocumentService) RejectQuotation(ctx context.Context, quoteID uuid.UUID, now time.Time) (*QuotationResponse, error) {
	quote, err := s.findQuotation(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := quote.Reject(now); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	return toQuotationResponse(quote), nil
}

// AcceptQuotation converts a sent quotation into an invoice carrying the
// same lines, and links the two.
func (s *DocumentService) AcceptQuotation(ctx context.Context, quoteID uuid.UUID, dueDate *time.Time, now time.Time) (*InvoiceResponse, error) {
	quote, err := s.findQuotation(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	// Refuse before raising the invoice so a failed transition leaves
	// nothing behind.
	if err := quote.CanAccept(now); err != nil {
		return nil, err
	}

	lines := make([]billing.LineItemInput, len(quote.Lines))
	for i, l := range quote.Lines {
		lines[i] = billing.LineItemInput{
			ItemID:       l.ItemID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TaxRate:      l.TaxRate,
			DiscountRate: l.DiscountRate,
		}
	}
	inv, err := s.CreateInvoice(ctx, CreateInvoiceRequest{
		CustomerName: quote.CustomerName,
		CustomerID:   quote.CustomerID,
		Date:         now,
		DueDate:      dueDate,
		Lines:        lines,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := quote.Accept(inv.ID, now); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}
	s.logger.Info("quotation accepted",
		zap.String("quotation", quote.Number),
		zap.String("invoice", inv.Number))
	return inv, nil
}

// CreatePurchaseOrderRequest is the input for opening a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName string                  `json:"supplier_name" binding:"required"`
	SupplierID   *uuid.UUID              `json:"supplier_id"`
	Date         time.Time               `json:"date" binding:"required"`
	ExpectedDate *time.Time              `json:"expected_date"`
	Lines        []billing.LineItemInput `json:"lines" binding:"required"`
}

// CreatePurchaseOrder numbers and stores an open purchase order
func (s *DocumentService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	number, err := s.poRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	po, err := billing.NewPurchaseOrder(number, req.SupplierName, req.Date)
	if err != nil {
		return nil, err
	}
	po.SupplierID = req.SupplierID
	po.ExpectedDate = req.ExpectedDate
	if err := po.SetLines(req.Lines); err != nil {
		return nil, err
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	SupplierName string          `json:"supplier_name"`
	Date         time.Time       `json:"date"`
	ExpectedDate *time.Time      `json:"expected_date,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	BillID       *uuid.UUID      `json:"bill_id,omitempty"`
	LineCount    int             `json:"line_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toPurchaseOrderResponse(po *billing.PurchaseOrder) *PurchaseOrderResponse {
	return &PurchaseOrderResponse{
		ID:           po.ID,
		Number:       po.Number,
		SupplierName: po.SupplierName,
		Date:         po.Date,
		ExpectedDate: po.ExpectedDate,
		TotalAmount:  po.TotalAmount,
		Status:       string(po.Status),
		BillID:       po.BillID,
		LineCount:    len(po.Lines),
		CreatedAt:    po.CreatedAt,
	}
}

// CancelPurchaseOrder cancels an order that has not been received
func (s *DocumentService) CancelPurchaseOrder(ctx context.Context, poID uuid.UUID, now time.Time) (*PurchaseOrderResponse, error) {
	po, err := s.findPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	if err := po.Cancel(now); err != nil {
		return nil, err
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// ReceivePurchaseOrder marks the order received and raises the matching bill
func (s *DocumentService) ReceivePurchaseOrder(ctx context.Context, poID uuid.UUID, dueDate *time.Time, now time.Time) (*BillResponse, error) {
	po, err := s.findPurchaseOrder(ctx, poID)
	if err != nil {
		return nil, err
	}
	// Refuse before raising the bill so a failed transition leaves
	// nothing behind.
	if err := po.CanReceive(); err != nil {
		return nil, err
	}

	lines := make([]billing.LineItemInput, len(po.Lines))
	for i, l := range po.Lines {
		lines[i] = billing.LineItemInput{
			ItemID:       l.ItemID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			TaxRate:      l.TaxRate,
			DiscountRate: l.DiscountRate,
		}
	}
	bill, err := s.CreateBill(ctx, CreateBillRequest{
		SupplierName: po.SupplierName,
		SupplierID:   po.SupplierID,
		Date:         now,
		DueDate:      dueDate,
		Lines:        lines,
	})
	if err != nil {
		return nil, err
	}

	if err := po.MarkReceived(bill.ID, now); err != nil {
		return nil, err
	}
	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, err
	}
	s.logger.Info("purchase order received",
		zap.String("purchase_order", po.Number),
		zap.String("bill", bill.Number))
	return bill, nil
}

// ===================== helpers =====================

func (s *DocumentService) findInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Invoice not found")
	}
	return inv, nil
}

func (s *DocumentService) findBill(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Bill not found")
	}
	return bill, nil
}

func (s *DocumentService) findQuotation(ctx context.Context, id uuid.UUID) (*billing.Quotation, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Quotation not found")
	}
	return quote, nil
}

func (s *DocumentService) findPurchaseOrder(ctx context.Context, id uuid.UUID) (*billing.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Purchase order not found")
	}
	return po, nil
}
