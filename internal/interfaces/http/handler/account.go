package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaccounting "github.com/smbledger/backend/internal/application/accounting"
)

// accountDetacher nulls item posting-account links when an account goes away
type accountDetacher interface {
	DetachAccount(ctx context.Context, accountID uuid.UUID) error
}

// AccountHandler exposes the chart of accounts
type AccountHandler struct {
	BaseHandler
	ledgerService *appaccounting.LedgerService
	detacher      accountDetacher
}

// AccountHandlerOption configures an AccountHandler
type AccountHandlerOption func(*AccountHandler)

// WithAccountDetacher wires the catalog so deleted accounts are unlinked
// from items.
func WithAccountDetacher(d accountDetacher) AccountHandlerOption {
	return func(h *AccountHandler) {
		h.detacher = d
	}
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(ledgerService *appaccounting.LedgerService, opts ...AccountHandlerOption) *AccountHandler {
	h := &AccountHandler{ledgerService: ledgerService}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.GetByID)
		accounts.PATCH("/:id", h.Update)
		accounts.PUT("/:id/parent", h.Move)
		accounts.DELETE("/:id", h.Delete)
	}
}

// Create adds an account to the chart
func (h *AccountHandler) Create(c *gin.Context) {
	var req appaccounting.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// List returns the chart in tree display order
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, accounts, len(accounts))
}

// GetByID returns one account with its full path
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.ledgerService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// UpdateAccountRequest renames or retypes an account
type UpdateAccountRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// Update renames and/or retypes an account
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Name == nil && req.Type == nil {
		h.BadRequest(c, "Nothing to update")
		return
	}

	ctx := c.Request.Context()
	var account *appaccounting.AccountResponse
	if req.Name != nil {
		if account, err = h.ledgerService.RenameAccount(ctx, id, *req.Name); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if req.Type != nil {
		if account, err = h.ledgerService.ChangeAccountType(ctx, id, *req.Type); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.Success(c, account)
}

// MoveAccountRequest reparents an account; a null parent moves it to the root
type MoveAccountRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// Move reparents an account
func (h *AccountHandler) Move(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req MoveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	newParent := uuid.Nil
	if req.ParentID != nil {
		newParent = *req.ParentID
	}

	account, err := h.ledgerService.MoveAccount(c.Request.Context(), id, newParent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Delete removes an account and unlinks it from catalog items
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	ctx := c.Request.Context()
	if err := h.ledgerService.DeleteAccount(ctx, id); err != nil {
		h.HandleError(c, err)
		return
	}
	if h.detacher != nil {
		if err := h.detacher.DetachAccount(ctx, id); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.NoContent(c)
}
