package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/domain/shared"
)

// GormJournalRepository implements accounting.JournalRepository using GORM
type GormJournalRepository struct {
	db *gorm.DB
}

// NewGormJournalRepository creates a new GormJournalRepository
func NewGormJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// FindByID finds a journal by its ID
func (r *GormJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Journal, error) {
	var journal accounting.Journal
	if err := dbFor(ctx, r.db).First(&journal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &journal, nil
}

// FindByAccount returns all journals touching an account in a date window
func (r *GormJournalRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]accounting.Journal, error) {
	var journals []accounting.Journal
	if err := dbFor(ctx, r.db).
		Where("(debit_account_id = ? OR credit_account_id = ?)", accountID, accountID).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, created_at ASC").
		Find(&journals).Error; err != nil {
		return nil, err
	}
	return journals, nil
}

// FindBySource returns all journals posted from one source document
func (r *GormJournalRepository) FindBySource(ctx context.Context, sourceType accounting.SourceDocumentType, sourceID uuid.UUID) ([]accounting.Journal, error) {
	var journals []accounting.Journal
	if err := dbFor(ctx, r.db).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("created_at ASC").
		Find(&journals).Error; err != nil {
		return nil, err
	}
	return journals, nil
}

// SaveWithAccounts persists the journal and the touched accounts atomically.
// Any failure rolls the whole posting back and surfaces as POSTING_FAILED.
func (r *GormJournalRepository) SaveWithAccounts(ctx context.Context, journal *accounting.Journal, accounts []*accounting.Account) error {
	err := dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(journal).Error; err != nil {
			return err
		}
		for _, account := range accounts {
			if err := tx.Save(account).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return shared.NewDomainError(shared.ErrCodePostingFailed, "Posting could not be stored: "+err.Error())
	}
	return nil
}

// GormGeneralJournalRepository implements accounting.GeneralJournalRepository using GORM
type GormGeneralJournalRepository struct {
	db *gorm.DB
}

// NewGormGeneralJournalRepository creates a new GormGeneralJournalRepository
func NewGormGeneralJournalRepository(db *gorm.DB) *GormGeneralJournalRepository {
	return &GormGeneralJournalRepository{db: db}
}

// FindByID finds a general journal entry with its lines
func (r *GormGeneralJournalRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.GeneralJournal, error) {
	var entry accounting.GeneralJournal
	if err := dbFor(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByReference finds a general journal entry by its JE-NNNNNN reference
func (r *GormGeneralJournalRepository) FindByReference(ctx context.Context, reference string) (*accounting.GeneralJournal, error) {
	var entry accounting.GeneralJournal
	if err := dbFor(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		First(&entry, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByDateRange returns entries dated within the window, lines included
func (r *GormGeneralJournalRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]accounting.GeneralJournal, error) {
	var entries []accounting.GeneralJournal
	if err := dbFor(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, reference ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveWithAccounts persists header, lines, and touched accounts atomically
func (r *GormGeneralJournalRepository) SaveWithAccounts(ctx context.Context, entry *accounting.GeneralJournal, accounts []*accounting.Account) error {
	err := dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		for _, account := range accounts {
			if err := tx.Save(account).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return shared.NewDomainError(shared.ErrCodePostingFailed, "Entry could not be stored: "+err.Error())
	}
	return nil
}

// NextReference generates the next JE-NNNNNN reference from the highest
// reference currently stored.
func (r *GormGeneralJournalRepository) NextReference(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "general_journals", "reference", billing.GeneralJournalNumbers)
}
