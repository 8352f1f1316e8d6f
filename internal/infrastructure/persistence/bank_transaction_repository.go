package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/banking"
)

// GormBankTransactionRepository implements banking.BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a bank transaction by its ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	var tx banking.BankTransaction
	if err := dbFor(ctx, r.db).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

// FindByIDs returns the transactions matching the given IDs
func (r *GormBankTransactionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]banking.BankTransaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var txs []banking.BankTransaction
	if err := dbFor(ctx, r.db).Where("id IN ?", ids).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindUnreconciled returns statement lines on a bank account not yet reconciled
func (r *GormBankTransactionRepository) FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID) ([]banking.BankTransaction, error) {
	var txs []banking.BankTransaction
	if err := dbFor(ctx, r.db).
		Where("bank_account_id = ? AND reconciled = ?", bankAccountID, false).
		Where("status <> ?", banking.BankTransactionStatusVoid).
		Order("transaction_date ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByBankAccount returns the statement lines in a date window
func (r *GormBankTransactionRepository) FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID, from, to time.Time) ([]banking.BankTransaction, error) {
	var txs []banking.BankTransaction
	if err := dbFor(ctx, r.db).
		Where("bank_account_id = ?", bankAccountID).
		Where("transaction_date >= ? AND transaction_date <= ?", from, to).
		Order("transaction_date ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Save persists a bank transaction
func (r *GormBankTransactionRepository) Save(ctx context.Context, tx *banking.BankTransaction) error {
	return dbFor(ctx, r.db).Save(tx).Error
}

// SaveAll persists a batch of imported statement lines in one transaction
func (r *GormBankTransactionRepository) SaveAll(ctx context.Context, txs []*banking.BankTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return dbFor(ctx, r.db).Transaction(func(dbtx *gorm.DB) error {
		for _, tx := range txs {
			if err := dbtx.Save(tx).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
