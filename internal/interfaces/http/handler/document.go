package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/smbledger/backend/internal/application/billing"
)

// DocumentHandler exposes invoices, bills, quotations and purchase orders
type DocumentHandler struct {
	BaseHandler
	documentService *appbilling.DocumentService
	clock           func() time.Time
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *appbilling.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		clock:           time.Now,
	}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/overdue", h.ListOverdueInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id/lines", h.UpdateInvoiceLines)
		invoices.DELETE("/:id", h.DeleteInvoice)
	}
	rg.POST("/bills", h.CreateBill)
	quotations := rg.Group("/quotations")
	{
		quotations.POST("", h.CreateQuotation)
		quotations.POST("/:id/send", h.SendQuotation)
		quotations.POST("/:id/accept", h.AcceptQuotation)
		quotations.POST("/:id/reject", h.RejectQuotation)
	}
	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.CreatePurchaseOrder)
		orders.POST("/:id/receive", h.ReceivePurchaseOrder)
		orders.POST("/:id/cancel", h.CancelPurchaseOrder)
	}
}

// CreateInvoiceRequest is the input for creating an invoice
type CreateInvoiceRequest struct {
	CustomerName   string            `json:"customer_name" binding:"required"`
	CustomerID     *uuid.UUID        `json:"customer_id"`
	Date           time.Time         `json:"date" binding:"required"`
	DueDate        *time.Time        `json:"due_date"`
	Lines          []LineItemRequest `json:"lines" binding:"required,min=1"`
	ShippingAmount decimal.Decimal   `json:"shipping_amount"`
	HeaderDiscount decimal.Decimal   `json:"header_discount"`
	Memo           string            `json:"memo"`
}

// CreateInvoice numbers and stores an invoice
func (h *DocumentHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), appbilling.CreateInvoiceRequest{
		CustomerName:   req.CustomerName,
		CustomerID:     req.CustomerID,
		Date:           req.Date,
		DueDate:        req.DueDate,
		Lines:          toLineInputs(req.Lines),
		ShippingAmount: req.ShippingAmount,
		HeaderDiscount: req.HeaderDiscount,
		Memo:           req.Memo,
	}, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetInvoice returns one invoice with its lines and current status
func (h *DocumentHandler) GetInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.documentService.GetInvoice(c.Request.Context(), id, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// UpdateInvoiceLinesRequest replaces the invoice lines
type UpdateInvoiceLinesRequest struct {
	Lines []LineItemRequest `json:"lines" binding:"required,min=1"`
}

// UpdateInvoiceLines replaces the lines of a draft or open invoice
func (h *DocumentHandler) UpdateInvoiceLines(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req UpdateInvoiceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.documentService.UpdateInvoiceLines(c.Request.Context(), id, toLineInputs(req.Lines), h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// DeleteInvoice removes an invoice
func (h *DocumentHandler) DeleteInvoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.documentService.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListOverdueInvoices returns unpaid invoices past their due date
func (h *DocumentHandler) ListOverdueInvoices(c *gin.Context) {
	invoices, err := h.documentService.ListOverdueInvoices(c.Request.Context(), h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, invoices, len(invoices))
}

// CreateBillRequest is the input for recording a supplier bill
type CreateBillRequest struct {
	SupplierName      string            `json:"supplier_name" binding:"required"`
	SupplierID        *uuid.UUID        `json:"supplier_id"`
	SupplierInvoiceNo string            `json:"supplier_invoice_no"`
	Date              time.Time         `json:"date" binding:"required"`
	DueDate           *time.Time        `json:"due_date"`
	Lines             []LineItemRequest `json:"lines" binding:"required,min=1"`
	Memo              string            `json:"memo"`
}

// CreateBill numbers and stores a supplier bill
func (h *DocumentHandler) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	bill, err := h.documentService.CreateBill(c.Request.Context(), appbilling.CreateBillRequest{
		SupplierName:      req.SupplierName,
		SupplierID:        req.SupplierID,
		SupplierInvoiceNo: req.SupplierInvoiceNo,
		Date:              req.Date,
		DueDate:           req.DueDate,
		Lines:             toLineInputs(req.Lines),
		Memo:              req.Memo,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// CreateQuotationRequest is the input for a draft quotation
type CreateQuotationRequest struct {
	CustomerName string            `json:"customer_name" binding:"required"`
	CustomerID   *uuid.UUID        `json:"customer_id"`
	Date         time.Time         `json:"date" binding:"required"`
	ExpiryDate   *time.Time        `json:"expiry_date"`
	Lines        []LineItemRequest `json:"lines" binding:"required,min=1"`
}

// CreateQuotation numbers and stores a draft quotation
func (h *DocumentHandler) CreateQuotation(c *gin.Context) {
	var req CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	quote, err := h.documentService.CreateQuotation(c.Request.Context(), appbilling.CreateQuotationRequest{
		CustomerName: req.CustomerName,
		CustomerID:   req.CustomerID,
		Date:         req.Date,
		ExpiryDate:   req.ExpiryDate,
		Lines:        toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// SendQuotation marks a draft quotation as delivered
func (h *DocumentHandler) SendQuotation(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	quote, err := h.documentService.SendQuotation(c.Request.Context(), id, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// RejectQuotation records the customer's refusal
func (h *DocumentHandler) RejectQuotation(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	quote, err := h.documentService.RejectQuotation(c.Request.Context(), id, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// ConvertDocumentRequest dates the converted document
type ConvertDocumentRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// AcceptQuotation converts an accepted quotation into an invoice
func (h *DocumentHandler) AcceptQuotation(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	var req ConvertDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	invoice, err := h.documentService.AcceptQuotation(c.Request.Context(), id, req.DueDate, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// CreatePurchaseOrderRequest is the input for an open purchase order
type CreatePurchaseOrderRequest struct {
	SupplierName string            `json:"supplier_name" binding:"required"`
	SupplierID   *uuid.UUID        `json:"supplier_id"`
	Date         time.Time         `json:"date" binding:"required"`
	ExpectedDate *time.Time        `json:"expected_date"`
	Lines        []LineItemRequest `json:"lines" binding:"required,min=1"`
}

// CreatePurchaseOrder numbers and stores an open purchase order
func (h *DocumentHandler) CreatePurchaseOrder(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	po, err := h.documentService.CreatePurchaseOrder(c.Request.Context(), appbilling.CreatePurchaseOrderRequest{
		SupplierName: req.SupplierName,
		SupplierID:   req.SupplierID,
		Date:         req.Date,
		ExpectedDate: req.ExpectedDate,
		Lines:        toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// CancelPurchaseOrder cancels an order that has not been received
func (h *DocumentHandler) CancelPurchaseOrder(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	po, err := h.documentService.CancelPurchaseOrder(c.Request.Context(), id, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// ReceivePurchaseOrder converts a received purchase order into a bill
func (h *DocumentHandler) ReceivePurchaseOrder(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID format")
		return
	}

	var req ConvertDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	bill, err := h.documentService.ReceivePurchaseOrder(c.Request.Context(), id, req.DueDate, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}
