package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/catalog"
	"github.com/smbledger/backend/internal/domain/shared"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item with its assembly components
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := dbFor(ctx, r.db).
		Preload("Components").
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKU finds an item by its unique SKU
func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := dbFor(ctx, r.db).
		Preload("Components").
		First(&item, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindByType returns all items of one type ordered by name
func (r *GormItemRepository) FindByType(ctx context.Context, itemType catalog.ItemType) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := dbFor(ctx, r.db).
		Preload("Components").
		Where("type = ?", itemType).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindChildren returns the direct sub-items of a parent
func (r *GormItemRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := dbFor(ctx, r.db).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActive returns all active items ordered by name
func (r *GormItemRepository) FindActive(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := dbFor(ctx, r.db).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists an item and replaces its assembly components
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Components").Save(item).Error; err != nil {
			return err
		}
		if err := tx.Where("assembly_id = ?", item.ID).Delete(&catalog.ItemComponent{}).Error; err != nil {
			return err
		}
		for i := range item.Components {
			if err := tx.Create(&item.Components[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an item and its component rows
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assembly_id = ? OR component_id = ?", id, id).Delete(&catalog.ItemComponent{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&catalog.Item{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// DetachAccount nulls posting-account links to a deleted account across all
// items, so account deletion never leaves dangling references.
func (r *GormItemRepository) DetachAccount(ctx context.Context, accountID uuid.UUID) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&catalog.Item{}).
			Where("income_account_id = ?", accountID).
			Update("income_account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&catalog.Item{}).
			Where("asset_account_id = ?", accountID).
			Update("asset_account_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&catalog.Item{}).
			Where("cogs_account_id = ?", accountID).
			Update("cogs_account_id", nil).Error
	})
}

// GormStockMovementRepository implements catalog.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByItem returns the movement ledger for an item in a date window
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]catalog.StockMovement, error) {
	var movements []catalog.StockMovement
	if err := dbFor(ctx, r.db).
		Where("item_id = ?", itemID).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Save appends a movement. The ledger is append-only: movements are never
// updated or deleted once written.
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *catalog.StockMovement) error {
	return dbFor(ctx, r.db).Create(movement).Error
}
