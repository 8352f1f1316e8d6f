package banking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentRepository provides access to payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByNumber(ctx context.Context, number string) (*Payment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Payment, error)
	FindByDocument(ctx context.Context, kind DocumentKind, documentID uuid.UUID) ([]Payment, error)
	FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID) ([]Payment, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// NextNumber generates the next PAY-NNNNNN number.
	NextNumber(ctx context.Context) (string, error)
}

// BankTransactionRepository provides access to imported statement lines
type BankTransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankTransaction, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]BankTransaction, error)
	FindUnreconciled(ctx context.Context, bankAccountID uuid.UUID) ([]BankTransaction, error)
	FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID, from, to time.Time) ([]BankTransaction, error)
	Save(ctx context.Context, tx *BankTransaction) error
	SaveAll(ctx context.Context, txs []*BankTransaction) error
}

// ReconciliationSessionRepository holds the per-account session state.
// FindOpenByBankAccount is the mutual-exclusion read: at most one open
// session may exist per bank account.
type ReconciliationSessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReconciliationSession, error)
	FindOpenByBankAccount(ctx context.Context, bankAccountID uuid.UUID) (*ReconciliationSession, error)
	Save(ctx context.Context, session *ReconciliationSession) error
}

// BankReconciliationRepository stores committed reconciliation records
type BankReconciliationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankReconciliation, error)
	FindLatestByBankAccount(ctx context.Context, bankAccountID uuid.UUID) (*BankReconciliation, error)
	FindByBankAccount(ctx context.Context, bankAccountID uuid.UUID) ([]BankReconciliation, error)
	Save(ctx context.Context, rec *BankReconciliation) error
}
