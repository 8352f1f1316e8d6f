package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/banking"
)

// GormReconciliationSessionRepository implements banking.ReconciliationSessionRepository using GORM
type GormReconciliationSessionRepository struct {
	db *gorm.DB
}

// NewGormReconciliationSessionRepository creates a new GormReconciliationSessionRepository
func NewGormReconciliationSessionRepository(db *gorm.DB) *GormReconciliationSessionRepository {
	return &GormReconciliationSessionRepository{db: db}
}

// FindByID finds a session with its marks
func (r *GormReconciliationSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.ReconciliationSession, error) {
	var session banking.ReconciliationSession
	if err := dbFor(ctx, r.db).
		Preload("Marks").
		First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// FindOpenByBankAccount returns the open session for an account, or nil when
// none exists. This is the mutual-exclusion read behind the one-open-session
// rule.
func (r *GormReconciliationSessionRepository) FindOpenByBankAccount(ctx context.Context, bankAccountID uuid.UUID) (*banking.ReconciliationSession, error) {
	var session banking.ReconciliationSession
	if err := dbFor(ctx, r.db).
		Preload("Marks").
		Where("bank_account_id = ? AND status = ?", bankAccountID, banking.SessionStatusOpen).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Save persists a session and replaces its marks. Marks carry no state beyond
// the session, so delete-and-reinsert keeps unmark simple.
func (r *GormReconciliationSessionRepository) Save(ctx context.Context, session *banking.ReconciliationSession) error {
	return dbFor(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Marks").Save(session).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.ID).Delete(&banking.SessionMark{}).Error; err != nil {
			return err
		}
		for i := range session.Marks {
			if err := tx.Create(&session.Marks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GormBankReconciliationRepository implements banking.BankReconciliationRepository using GORM
type GormBankReconciliationRepository struct {
	db *gorm.DB
}

// NewGormBankReconciliationRepository creates a new GormBankReconciliationRepository
func NewGormBankReconciliationRepository(db *gorm.DB) *GormBankReconciliationRepository {
	return &GormBankReconciliationRepository{db: db}
}

// FindByID finds a committed reconciliation record
func (r *GormBankReconciliationRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankReconciliation, error) {
	var rec banking.BankReconciliation
	if err := dbFor(ctx, r.db).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindLatestByBankAccount returns the most recent record by statement date,
// or nil when the account has never been reconciled. Its ending balance seeds
// the next session's beginning balance.
func (r *GormBankReconciliationRepository) FindLatestByBankAccount(ctx context.Context, bankAccountID uuid.UUID) (*banking.BankReconciliation, error) {
	var rec banking.BankReconciliation
	if err := dbFor(ctx, r.db).
		Where("bank_account_id = ?", bankAccountID).
		Order("statement_date DESC, reconciled_at DESC").
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindByBankAccount returns the reconciliation history, newest first
func (r *GormBankReconciliationRepository) FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID) ([]banking.BankReconciliation, error) {
	var recs []banking.BankReconciliation
	if err := dbFor(ctx, r.db).
		Where("bank_account_id = ?", bankAccountID).
		Order("statement_date DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Save persists a reconciliation record
func (r *GormBankReconciliationRepository) Save(ctx context.Context, rec *banking.BankReconciliation) error {
	return dbFor(ctx, r.db).Save(rec).Error
}
