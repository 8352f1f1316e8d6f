package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// ItemComponent is one bill-of-materials edge: an assembly consumes Quantity
// units of a component item at UnitCost each.
type ItemComponent struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	AssemblyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

func (ItemComponent) TableName() string {
	return "item_components"
}

// NewItemComponent creates a BOM edge with its extended cost computed
func NewItemComponent(assemblyID, componentID uuid.UUID, quantity, unitCost decimal.Decimal) (*ItemComponent, error) {
	if assemblyID == componentID {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Assembly cannot contain itself")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Component quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Component unit cost cannot be negative")
	}
	c := &ItemComponent{
		ID:          uuid.New(),
		AssemblyID:  assemblyID,
		ComponentID: componentID,
		Quantity:    quantity,
		UnitCost:    unitCost.Round(2),
	}
	c.Recalculate()
	return c, nil
}

// Recalculate rederives the extended cost from quantity and unit cost
func (c *ItemComponent) Recalculate() {
	c.TotalCost = c.Quantity.Mul(c.UnitCost).Round(2)
}
