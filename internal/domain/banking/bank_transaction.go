package banking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// BankTransactionType classifies a statement line
type BankTransactionType string

const (
	BankTransactionDeposit    BankTransactionType = "DEPOSIT"
	BankTransactionWithdrawal BankTransactionType = "WITHDRAWAL"
	BankTransactionFee        BankTransactionType = "FEE"
	BankTransactionInterest   BankTransactionType = "INTEREST"
	BankTransactionOther      BankTransactionType = "OTHER"
)

// IsValid checks if the transaction type is valid
func (t BankTransactionType) IsValid() bool {
	switch t {
	case BankTransactionDeposit, BankTransactionWithdrawal, BankTransactionFee, BankTransactionInterest, BankTransactionOther:
		return true
	}
	return false
}

// IsInflow reports whether the transaction moves money into the account
func (t BankTransactionType) IsInflow() bool {
	return t == BankTransactionDeposit || t == BankTransactionInterest
}

// BankTransactionStatus represents the reconciliation progress of a line
type BankTransactionStatus string

const (
	BankTransactionStatusPending    BankTransactionStatus = "PENDING"
	BankTransactionStatusCleared    BankTransactionStatus = "CLEARED"
	BankTransactionStatusReconciled BankTransactionStatus = "RECONCILED"
	BankTransactionStatusVoid       BankTransactionStatus = "VOID"
)

// MatchConfidence grades an advisory payment match suggestion
type MatchConfidence string

const (
	MatchExact  MatchConfidence = "EXACT"
	MatchHigh   MatchConfidence = "HIGH"
	MatchMedium MatchConfidence = "MEDIUM"
	MatchLow    MatchConfidence = "LOW"
)

// BankTransaction is one imported bank statement line. Created by statement
// import, mutated only by the reconciliation workflow, never deleted once
// reconciled.
type BankTransaction struct {
	shared.BaseAggregateRoot
	BankAccountID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	TransactionDate time.Time             `gorm:"not null;index"`
	Type            BankTransactionType   `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Description     string                `gorm:"type:varchar(500)"`
	Reference       string                `gorm:"type:varchar(100)"`
	Status          BankTransactionStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Reconciled      bool                  `gorm:"not null;default:false;index"`
	ReconciledAt    *time.Time
	PaymentID       *uuid.UUID       `gorm:"type:uuid;index"`
	MatchConfidence *MatchConfidence `gorm:"type:varchar(10)"`
	MatchedAmount   *decimal.Decimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (BankTransaction) TableName() string {
	return "bank_transactions"
}

// NewBankTransaction creates a statement line for a bank account
func NewBankTransaction(
	bankAccountID uuid.UUID,
	transactionDate time.Time,
	txType BankTransactionType,
	amount decimal.Decimal,
	description, reference string,
) (*BankTransaction, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Bank account is required")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Transaction date is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Invalid transaction type %q", txType))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Transaction amount must be positive")
	}

	return &BankTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BankAccountID:     bankAccountID,
		TransactionDate:   transactionDate,
		Type:              txType,
		Amount:            amount.Round(2),
		Description:       description,
		Reference:         reference,
		Status:            BankTransactionStatusPending,
	}, nil
}

// SuggestMatch attaches an advisory payment match. Suggestions never set
// Reconciled; committing a session does.
func (t *BankTransaction) SuggestMatch(paymentID uuid.UUID, matchedAmount decimal.Decimal, confidence MatchConfidence) error {
	if t.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			"Cannot re-match a reconciled bank transaction")
	}
	id := paymentID
	amt := matchedAmount.Round(2)
	c := confidence
	t.PaymentID = &id
	t.MatchedAmount = &amt
	t.MatchConfidence = &c
	t.IncrementVersion()
	return nil
}

// ClearMatch removes an advisory suggestion
func (t *BankTransaction) ClearMatch() error {
	if t.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			"Cannot unmatch a reconciled bank transaction")
	}
	t.PaymentID = nil
	t.MatchedAmount = nil
	t.MatchConfidence = nil
	t.IncrementVersion()
	return nil
}

// MarkReconciled is called by a committing reconciliation session
func (t *BankTransaction) MarkReconciled(now time.Time) error {
	if t.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			"Bank transaction is already reconciled")
	}
	if t.Status == BankTransactionStatusVoid {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Cannot reconcile a void transaction")
	}
	t.Reconciled = true
	ts := now
	t.ReconciledAt = &ts
	t.Status = BankTransactionStatusReconciled
	t.IncrementVersion()
	return nil
}

// SignedAmount returns the amount signed by direction: positive for inflows,
// negative for outflows.
func (t *BankTransaction) SignedAmount() decimal.Decimal {
	if t.Type.IsInflow() {
		return t.Amount
	}
	return t.Amount.Neg()
}
