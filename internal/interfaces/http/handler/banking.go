package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbanking "github.com/smbledger/backend/internal/application/banking"
	appbilling "github.com/smbledger/backend/internal/application/billing"
	"github.com/smbledger/backend/internal/domain/banking"
)

// BankingHandler exposes payments, statement import and reconciliation
type BankingHandler struct {
	BaseHandler
	reconService    *appbanking.ReconciliationService
	documentService *appbilling.DocumentService
	invalidator     reportInvalidator
	clock           func() time.Time
}

// BankingHandlerOption configures a BankingHandler
type BankingHandlerOption func(*BankingHandler)

// WithBankingReportInvalidator wires the report cache so commit postings
// drop stale reports.
func WithBankingReportInvalidator(inv reportInvalidator) BankingHandlerOption {
	return func(h *BankingHandler) {
		h.invalidator = inv
	}
}

// NewBankingHandler creates a new BankingHandler
func NewBankingHandler(
	reconService *appbanking.ReconciliationService,
	documentService *appbilling.DocumentService,
	opts ...BankingHandlerOption,
) *BankingHandler {
	h := &BankingHandler{
		reconService:    reconService,
		documentService: documentService,
		clock:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers banking routes
func (h *BankingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.POST("/:id/void", h.VoidPayment)
	}
	bank := rg.Group("/bank-accounts")
	{
		bank.POST("/:id/statement-import", h.ImportStatement)
		bank.GET("/:id/match-suggestions", h.SuggestMatches)
	}
	sessions := rg.Group("/reconciliation-sessions")
	{
		sessions.POST("", h.BeginSession)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/marks", h.MarkItem)
		sessions.DELETE("/:id/marks", h.UnmarkItem)
		sessions.POST("/:id/commit", h.CommitSession)
		sessions.POST("/:id/abandon", h.AbandonSession)
	}
}

// recomputeLinkedDocument refreshes the settled document's paid totals after
// a payment changes.
func (h *BankingHandler) recomputeLinkedDocument(c *gin.Context, payment *appbanking.PaymentResponse) error {
	if payment.DocumentKind == nil || payment.DocumentID == nil {
		return nil
	}
	return h.documentService.RecomputeDocumentPayments(c.Request.Context(),
		banking.DocumentKind(*payment.DocumentKind), *payment.DocumentID)
}

// CreatePayment records a payment and refreshes the linked document
func (h *BankingHandler) CreatePayment(c *gin.Context) {
	var req appbanking.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.reconService.CreatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.recomputeLinkedDocument(c, payment); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// VoidPaymentRequest carries the void reason
type VoidPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// VoidPayment voids a payment and refreshes the linked document
func (h *BankingHandler) VoidPayment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req VoidPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.reconService.VoidPayment(c.Request.Context(), id, req.Reason, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.recomputeLinkedDocument(c, payment); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// ImportStatement parses a CSV statement from the request body
func (h *BankingHandler) ImportStatement(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	result, err := h.reconService.ImportStatement(c.Request.Context(), id, c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SuggestMatches pairs unreconciled statement lines with payments
func (h *BankingHandler) SuggestMatches(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	suggestions, err := h.reconService.SuggestMatches(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, suggestions, len(suggestions))
}

// BeginSession opens a reconciliation session for a bank account
func (h *BankingHandler) BeginSession(c *gin.Context) {
	var req appbanking.BeginSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.reconService.BeginSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// GetSession returns the running totals of a session
func (h *BankingHandler) GetSession(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.reconService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// MarkItem clears one statement line or payment in the session
func (h *BankingHandler) MarkItem(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req appbanking.MarkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.reconService.MarkItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UnmarkItem removes a mark from the session
func (h *BankingHandler) UnmarkItem(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req appbanking.MarkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	session, err := h.reconService.UnmarkItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// CommitSessionRequest optionally attributes the commit
type CommitSessionRequest struct {
	ReconciledBy *uuid.UUID `json:"reconciled_by"`
}

// CommitSession finalizes the session into a reconciliation record
func (h *BankingHandler) CommitSession(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	var req CommitSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	result, err := h.reconService.CommitSession(c.Request.Context(), id, req.ReconciledBy, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.invalidator != nil {
		h.invalidator.InvalidateCache(c.Request.Context())
	}
	h.Success(c, result)
}

// AbandonSession discards the session without touching any marks
func (h *BankingHandler) AbandonSession(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid session ID format")
		return
	}

	session, err := h.reconService.AbandonSession(c.Request.Context(), id, h.clock())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
