package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemRepository provides access to catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindByType(ctx context.Context, itemType ItemType) ([]Item, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Item, error)
	FindActive(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DetachAccount nulls posting-account links to a deleted account across
	// all items.
	DetachAccount(ctx context.Context, accountID uuid.UUID) error
}

// StockMovementRepository stores the append-only stock ledger
type StockMovementRepository interface {
	FindByItem(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]StockMovement, error)
	Save(ctx context.Context, movement *StockMovement) error
}
