package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appcatalog "github.com/smbledger/backend/internal/application/catalog"
)

// ItemHandler exposes the item catalog and stock ledger
type ItemHandler struct {
	BaseHandler
	inventoryService *appcatalog.InventoryService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(inventoryService *appcatalog.InventoryService) *ItemHandler {
	return &ItemHandler{inventoryService: inventoryService}
}

// RegisterRoutes registers catalog routes
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:id", h.GetByID)
		items.PUT("/:id/cost", h.SetCost)
		items.POST("/:id/components", h.AddComponent)
		items.POST("/:id/movements", h.RecordMovement)
		items.GET("/:id/movements", h.ListMovements)
	}
}

// Create adds an item to the catalog
func (h *ItemHandler) Create(c *gin.Context) {
	var req appcatalog.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List returns all active items
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.inventoryService.ListActiveItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, items, len(items))
}

// GetByID returns one item with its components
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// SetCostRequest reprices an item
type SetCostRequest struct {
	Cost decimal.Decimal `json:"cost" binding:"required"`
}

// SetCost reprices an item and rederives its stock value
func (h *ItemHandler) SetCost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req SetCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.inventoryService.SetItemCost(c.Request.Context(), id, req.Cost)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// AddComponent adds a BOM edge to an assembly
func (h *ItemHandler) AddComponent(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req appcatalog.AddComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.inventoryService.AddComponent(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// RecordMovement appends a stock ledger row to an item
func (h *ItemHandler) RecordMovement(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req appcatalog.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements returns an item's stock ledger for a period
func (h *ItemHandler) ListMovements(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	from, to, _, err := parseDateRange(c)
	if err != nil {
		h.BindError(c, err)
		return
	}
	// Make the upper bound inclusive of the whole day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	movements, err := h.inventoryService.ListMovements(c.Request.Context(), id, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithTotal(c, movements, len(movements))
}
