package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smbledger/backend/internal/domain/catalog"
	"github.com/smbledger/backend/internal/domain/shared"
)

// InventoryService manages the item catalog and its stock ledger
type InventoryService struct {
	itemRepo     catalog.ItemRepository
	movementRepo catalog.StockMovementRepository
	logger       *zap.Logger
}

// InventoryServiceOption is a functional option for configuring InventoryService
type InventoryServiceOption func(*InventoryService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) InventoryServiceOption {
	return func(s *InventoryService) {
		s.logger = logger
	}
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	itemRepo catalog.ItemRepository,
	movementRepo catalog.StockMovementRepository,
	opts ...InventoryServiceOption,
) *InventoryService {
	s := &InventoryService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateItemRequest is the input for creating a catalog item
type CreateItemRequest struct {
	Name            string          `json:"name" binding:"required"`
	SKU             string          `json:"sku"`
	Type            string          `json:"type" binding:"required"`
	Description     string          `json:"description"`
	ParentID        *uuid.UUID      `json:"parent_id"`
	Cost            decimal.Decimal `json:"cost"`
	SalesPrice      decimal.Decimal `json:"sales_price"`
	IncomeAccountID *uuid.UUID      `json:"income_account_id"`
	AssetAccountID  *uuid.UUID      `json:"asset_account_id"`
	COGSAccountID   *uuid.UUID      `json:"cogs_account_id"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	SKU             string              `json:"sku"`
	Type            string              `json:"type"`
	Description     string              `json:"description,omitempty"`
	ParentID        *uuid.UUID          `json:"parent_id,omitempty"`
	Cost            decimal.Decimal     `json:"cost"`
	SalesPrice      decimal.Decimal     `json:"sales_price"`
	OnHand          decimal.Decimal     `json:"on_hand"`
	TotalValue      decimal.Decimal     `json:"total_value"`
	IsActive        bool                `json:"is_active"`
	IncomeAccountID *uuid.UUID          `json:"income_account_id,omitempty"`
	AssetAccountID  *uuid.UUID          `json:"asset_account_id,omitempty"`
	COGSAccountID   *uuid.UUID          `json:"cogs_account_id,omitempty"`
	Components      []ComponentResponse `json:"components,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ComponentResponse is one BOM edge in API responses
type ComponentResponse struct {
	ComponentID uuid.UUID       `json:"component_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

func toItemResponse(item *catalog.Item) *ItemResponse {
	resp := &ItemResponse{
		ID:              item.ID,
		Name:            item.Name,
		SKU:             item.SKU,
		Type:            string(item.Type),
		Description:     item.Description,
		ParentID:        item.ParentID,
		Cost:            item.Cost,
		SalesPrice:      item.SalesPrice,
		OnHand:          item.OnHand,
		TotalValue:      item.TotalValue,
		IsActive:        item.IsActive,
		IncomeAccountID: item.IncomeAccountID,
		AssetAccountID:  item.AssetAccountID,
		COGSAccountID:   item.COGSAccountID,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
	for _, c := range item.Components {
		resp.Components = append(resp.Components, ComponentResponse{
			ComponentID: c.ComponentID,
			Quantity:    c.Quantity,
			UnitCost:    c.UnitCost,
			TotalCost:   c.TotalCost,
		})
	}
	return resp
}

// CreateItem adds an item to the catalog. SKUs must be unique when set.
func (s *InventoryService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	if req.SKU != "" {
		existing, err := s.itemRepo.FindBySKU(ctx, req.SKU)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError(shared.ErrCodeValidation, "SKU already in use: "+req.SKU)
		}
	}

	item, err := catalog.NewItem(req.Name, req.SKU, catalog.ItemType(req.Type), req.Cost, req.SalesPrice)
	if err != nil {
		return nil, err
	}
	item.Description = req.Description
	item.IncomeAccountID = req.IncomeAccountID
	item.AssetAccountID = req.AssetAccountID
	item.COGSAccountID = req.COGSAccountID
	if req.ParentID != nil {
		if err := s.ensureItemExists(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		if err := item.SetParent(req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item created",
		zap.String("name", item.Name),
		zap.String("type", string(item.Type)))
	return toItemResponse(item), nil
}

// GetItem returns one item with its components
func (s *InventoryService) GetItem(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// ListActiveItems returns all active catalog items
func (s *InventoryService) ListActiveItems(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.itemRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = *toItemResponse(&items[i])
	}
	return responses, nil
}

// SetItemCost reprices an item and rederives its stock value
func (s *InventoryService) SetItemCost(ctx context.Context, id uuid.UUID, cost decimal.Decimal) (*ItemResponse, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.SetCost(cost); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// AddComponentRequest is the input for adding a BOM edge to an assembly
type AddComponentRequest struct {
	ComponentID uuid.UUID       `json:"component_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// AddComponent adds a component to an assembly's bill of materials and rolls
// the assembly cost up from the full BOM. A zero unit cost inherits the
// component item's own cost.
func (s *InventoryService) AddComponent(ctx context.Context, assemblyID uuid.UUID, req AddComponentRequest) (*ItemResponse, error) {
	assembly, err := s.findItem(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	component, err := s.findItem(ctx, req.ComponentID)
	if err != nil {
		return nil, err
	}

	unitCost := req.UnitCost
	if unitCost.IsZero() {
		unitCost = component.Cost
	}
	edge, err := catalog.NewItemComponent(assemblyID, req.ComponentID, req.Quantity, unitCost)
	if err != nil {
		return nil, err
	}
	assembly.Components = append(assembly.Components, *edge)
	if err := assembly.RollupAssemblyCost(); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, assembly); err != nil {
		return nil, err
	}
	s.logger.Info("assembly component added",
		zap.Stringer("assembly", assemblyID),
		zap.Stringer("component", req.ComponentID),
		zap.String("cost", assembly.Cost.StringFixed(2)))
	return toItemResponse(assembly), nil
}

// RecordMovementRequest is the input for one stock ledger row
type RecordMovementRequest struct {
	Type       string          `json:"type" binding:"required"`
	Date       time.Time       `json:"date" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Memo       string          `json:"memo"`
	SourceType string          `json:"source_type"`
	SourceID   *uuid.UUID      `json:"source_id"`
}

// MovementResponse is one stock ledger row in API responses
type MovementResponse struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Type       string          `json:"type"`
	Date       time.Time       `json:"date"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Memo       string          `json:"memo,omitempty"`
	SourceType string          `json:"source_type,omitempty"`
	SourceID   *uuid.UUID      `json:"source_id,omitempty"`
	OnHand     decimal.Decimal `json:"on_hand_after"`
}

// RecordMovement appends one row to an item's stock ledger and applies the
// delta to its on-hand quantity. Both writes succeed or neither does at the
// domain level: the movement is only stored after the item accepts it.
func (s *InventoryService) RecordMovement(ctx context.Context, itemID uuid.UUID, req RecordMovementRequest) (*MovementResponse, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	unitCost := req.UnitCost
	if unitCost.IsZero() {
		unitCost = item.Cost
	}
	movement, err := catalog.NewStockMovement(itemID, catalog.StockMovementType(req.Type), req.Date, req.Quantity, unitCost)
	if err != nil {
		return nil, err
	}
	movement.Memo = req.Memo
	if req.SourceID != nil {
		movement.WithSource(req.SourceType, *req.SourceID)
	}

	if err := item.ApplyMovement(movement); err != nil {
		return nil, err
	}
	if err := s.movementRepo.Save(ctx, movement); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("stock movement recorded",
		zap.Stringer("item", itemID),
		zap.String("type", string(movement.Type)),
		zap.String("quantity", movement.Quantity.String()),
		zap.String("on_hand", item.OnHand.String()))

	resp := toMovementResponse(movement)
	resp.OnHand = item.OnHand
	return resp, nil
}

// ListMovements returns an item's stock ledger rows for a period
func (s *InventoryService) ListMovements(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]MovementResponse, error) {
	if err := s.ensureItemExists(ctx, itemID); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByItem(ctx, itemID, from, to)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = *toMovementResponse(&movements[i])
	}
	return responses, nil
}

// DetachAccount nulls item posting-account links to a deleted account
func (s *InventoryService) DetachAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.itemRepo.DetachAccount(ctx, accountID)
}

func toMovementResponse(m *catalog.StockMovement) *MovementResponse {
	return &MovementResponse{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Type:       string(m.Type),
		Date:       m.Date,
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		Memo:       m.Memo,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
	}
}

func (s *InventoryService) findItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Item not found")
	}
	return item, nil
}

func (s *InventoryService) ensureItemExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.findItem(ctx, id)
	return err
}
