package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// ItemType classifies what an item is and whether it carries stock
type ItemType string

const (
	ItemTypeService           ItemType = "SERVICE"
	ItemTypeInventoryPart     ItemType = "INVENTORY_PART"
	ItemTypeInventoryAssembly ItemType = "INVENTORY_ASSEMBLY"
	ItemTypeNonInventoryPart  ItemType = "NON_INVENTORY_PART"
	ItemTypeOtherCharge       ItemType = "OTHER_CHARGE"
	ItemTypeDiscount          ItemType = "DISCOUNT"
	ItemTypeGroup             ItemType = "GROUP"
	ItemTypePayment           ItemType = "PAYMENT"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeService, ItemTypeInventoryPart, ItemTypeInventoryAssembly,
		ItemTypeNonInventoryPart, ItemTypeOtherCharge, ItemTypeDiscount,
		ItemTypeGroup, ItemTypePayment:
		return true
	}
	return false
}

// TracksStock reports whether on-hand quantities apply to this type
func (t ItemType) TracksStock() bool {
	return t == ItemTypeInventoryPart || t == ItemTypeInventoryAssembly
}

// Item is a sellable or purchasable catalog entry. Inventory types carry
// on-hand quantity and value; TotalValue is always OnHand * Cost.
type Item struct {
	shared.BaseAggregateRoot
	Name        string   `gorm:"type:varchar(200);not null;index"`
	SKU         string   `gorm:"type:varchar(64);uniqueIndex"`
	Type        ItemType `gorm:"type:varchar(30);not null;index"`
	Description string   `gorm:"type:varchar(1000)"`
	// ParentID groups items under a parent for display; it is not a BOM link.
	ParentID   *uuid.UUID      `gorm:"type:uuid;index"`
	Cost       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SalesPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsActive   bool            `gorm:"not null;default:true"`

	// Posting account links; nulled when the account is deleted.
	IncomeAccountID *uuid.UUID `gorm:"type:uuid;index"`
	AssetAccountID  *uuid.UUID `gorm:"type:uuid;index"`
	COGSAccountID   *uuid.UUID `gorm:"type:uuid;index"`

	Components []ItemComponent `gorm:"foreignKey:AssemblyID;references:ID"`
}

func (Item) TableName() string {
	return "items"
}

// NewItem creates a catalog item with zero stock
func NewItem(name, sku string, itemType ItemType, cost, salesPrice decimal.Decimal) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Item name cannot be empty")
	}
	if !itemType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Invalid item type: "+string(itemType))
	}
	if cost.IsNegative() || salesPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Cost and sales price cannot be negative")
	}
	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               sku,
		Type:              itemType,
		Cost:              cost.Round(2),
		SalesPrice:        salesPrice.Round(2),
		OnHand:            decimal.Zero,
		TotalValue:        decimal.Zero,
		IsActive:          true,
	}, nil
}

// SetParent places the item under a grouping parent
func (i *Item) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == i.ID {
		return shared.NewDomainError(shared.ErrCodeValidation, "Item cannot be its own parent")
	}
	i.ParentID = parentID
	i.IncrementVersion()
	return nil
}

// SetCost reprices the item and rederives the stock value
func (i *Item) SetCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeValidation, "Cost cannot be negative")
	}
	i.Cost = cost.Round(2)
	i.recomputeValue()
	return nil
}

// ApplyMovement adjusts on-hand quantity by a signed delta and rederives the
// stock value. Non-stock item types reject movements.
func (i *Item) ApplyMovement(m *StockMovement) error {
	if !i.Type.TracksStock() {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Item type does not track stock: "+string(i.Type))
	}
	if m.ItemID != i.ID {
		return shared.NewDomainError(shared.ErrCodeValidation, "Movement belongs to a different item")
	}
	next := i.OnHand.Add(m.SignedQuantity())
	if next.IsNegative() {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Movement would drive on-hand negative")
	}
	i.OnHand = next
	i.recomputeValue()
	return nil
}

func (i *Item) recomputeValue() {
	i.TotalValue = i.OnHand.Mul(i.Cost).Round(2)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// RollupAssemblyCost rederives an assembly's cost from its bill of materials.
// Every component must carry a computed TotalCost; a partial BOM leaves the
// cost unchanged and reports the gap.
func (i *Item) RollupAssemblyCost() error {
	if i.Type != ItemTypeInventoryAssembly {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only assemblies have a component cost rollup")
	}
	if len(i.Components) == 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Assembly has no components")
	}
	total := decimal.Zero
	for idx := range i.Components {
		c := &i.Components[idx]
		if c.TotalCost.IsZero() && !c.UnitCost.IsZero() {
			c.Recalculate()
		}
		if c.TotalCost.IsZero() {
			return shared.NewDomainError(shared.ErrCodeInvalidState, "Component cost is not yet known")
		}
		total = total.Add(c.TotalCost)
	}
	i.Cost = total.Round(2)
	i.recomputeValue()
	return nil
}

// DetachAccount nulls any posting-account link pointing at the deleted
// account id.
func (i *Item) DetachAccount(accountID uuid.UUID) {
	changed := false
	if i.IncomeAccountID != nil && *i.IncomeAccountID == accountID {
		i.IncomeAccountID = nil
		changed = true
	}
	if i.AssetAccountID != nil && *i.AssetAccountID == accountID {
		i.AssetAccountID = nil
		changed = true
	}
	if i.COGSAccountID != nil && *i.COGSAccountID == accountID {
		i.COGSAccountID = nil
		changed = true
	}
	if changed {
		i.IncrementVersion()
	}
}
