package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/banking"
	"github.com/smbledger/backend/internal/domain/billing"
	"github.com/smbledger/backend/internal/domain/shared"
)

// GormPaymentRepository implements banking.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Payment, error) {
	var payment banking.Payment
	if err := dbFor(ctx, r.db).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByNumber finds a payment by its PAY-NNNNNN number
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, number string) (*banking.Payment, error) {
	var payment banking.Payment
	if err := dbFor(ctx, r.db).First(&payment, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByIDs returns the payments matching the given IDs
func (r *GormPaymentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]banking.Payment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var payments []banking.Payment
	if err := dbFor(ctx, r.db).Where("id IN ?", ids).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByDocument returns all payments applied to one document
func (r *GormPaymentRepository) FindByDocument(ctx context.Context, kind banking.DocumentKind, documentID uuid.UUID) ([]banking.Payment, error) {
	var payments []banking.Payment
	if err := dbFor(ctx, r.db).
		Where("document_kind = ? AND document_id = ?", kind, documentID).
		Order("payment_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindUnreconciled returns the payments on a bank account not yet reconciled
func (r *GormPaymentRepository) FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID) ([]banking.Payment, error) {
	var payments []banking.Payment
	if err := dbFor(ctx, r.db).
		Where("bank_account_id = ? AND reconciled = ?", bankAccountID, false).
		Where("status NOT IN ?", []banking.PaymentStatus{banking.PaymentStatusVoided, banking.PaymentStatusCancelled}).
		Order("payment_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByDateRange returns payments dated within the window
func (r *GormPaymentRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]banking.Payment, error) {
	var payments []banking.Payment
	if err := dbFor(ctx, r.db).
		Where("payment_date >= ? AND payment_date <= ?", from, to).
		Order("payment_date ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save persists a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *banking.Payment) error {
	return dbFor(ctx, r.db).Save(payment).Error
}

// Delete removes a payment by ID
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&banking.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextNumber generates the next PAY-NNNNNN number
func (r *GormPaymentRepository) NextNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.db, "payments", "number", billing.PaymentNumbers)
}
