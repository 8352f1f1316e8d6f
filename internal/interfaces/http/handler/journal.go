package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appaccounting "github.com/smbledger/backend/internal/application/accounting"
	"github.com/smbledger/backend/internal/domain/accounting"
)

// JournalHandler exposes ledger posting
type JournalHandler struct {
	BaseHandler
	ledgerService *appaccounting.LedgerService
	invalidator   reportInvalidator
}

// JournalHandlerOption configures a JournalHandler
type JournalHandlerOption func(*JournalHandler)

// WithReportInvalidator wires the report cache so postings drop stale reports
func WithReportInvalidator(inv reportInvalidator) JournalHandlerOption {
	return func(h *JournalHandler) {
		h.invalidator = inv
	}
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(ledgerService *appaccounting.LedgerService, opts ...JournalHandlerOption) *JournalHandler {
	h := &JournalHandler{ledgerService: ledgerService}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers posting routes
func (h *JournalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	journals := rg.Group("/journals")
	{
		journals.POST("", h.Post)
		journals.POST("/:id/reverse", h.Reverse)
	}
	rg.POST("/journal-entries", h.PostGeneral)
}

func (h *JournalHandler) invalidateReports(c *gin.Context) {
	if h.invalidator != nil {
		h.invalidator.InvalidateCache(c.Request.Context())
	}
}

// Post records a two-sided journal
func (h *JournalHandler) Post(c *gin.Context) {
	var req appaccounting.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	journal, err := h.ledgerService.PostJournal(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidateReports(c)
	h.Created(c, journal)
}

// ReverseJournalRequest dates the offsetting journal
type ReverseJournalRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// Reverse posts the offsetting journal for an earlier posting
func (h *JournalHandler) Reverse(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid journal ID format")
		return
	}

	var req ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	journal, err := h.ledgerService.ReverseJournal(c.Request.Context(), id, req.Date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidateReports(c)
	h.Created(c, journal)
}

// JournalLineRequest is one line of a multi-line entry
type JournalLineRequest struct {
	AccountID uuid.UUID       `json:"account_id" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// PostGeneralJournalRequest is the input for a multi-line entry
type PostGeneralJournalRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2"`
}

// PostGeneral records a balanced multi-line entry
func (h *JournalHandler) PostGeneral(c *gin.Context) {
	var req PostGeneralJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lines := make([]accounting.JournalLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = accounting.JournalLineInput{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
	}

	entry, err := h.ledgerService.PostGeneralJournal(c.Request.Context(), appaccounting.PostGeneralJournalRequest{
		Date:        req.Date,
		Description: req.Description,
		Lines:       lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.invalidateReports(c)
	h.Created(c, entry)
}
