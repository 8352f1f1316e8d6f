package banking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// SessionStatus represents the state of a reconciliation session.
// NoSession -> SessionOpen -> (Committed | Abandoned); only one open session
// may exist per bank account at a time.
type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "OPEN"
	SessionStatusCommitted SessionStatus = "COMMITTED"
	SessionStatusAbandoned SessionStatus = "ABANDONED"
)

// MarkKind distinguishes the two item kinds a session can mark
type MarkKind string

const (
	MarkKindBankTransaction MarkKind = "BANK_TRANSACTION"
	MarkKindPayment         MarkKind = "PAYMENT"
)

// SessionMark is one item marked within an open session. Amount and Inflow
// are denormalized from the marked item so the cleared balance is computable
// without loading every item again.
type SessionMark struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind      MarkKind        `gorm:"type:varchar(20);not null"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Inflow    bool            `gorm:"not null"`
	MarkedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SessionMark) TableName() string {
	return "session_marks"
}

// ReconciliationSession is the server-side state of one in-progress bank
// reconciliation. It lives in the store (not a web session) so the
// one-open-session-per-account guarantee holds across requests and processes.
type ReconciliationSession struct {
	shared.BaseAggregateRoot
	BankAccountID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	StatementDate          time.Time       `gorm:"not null"`
	BeginningBalance       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EndingBalance          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ServiceCharge          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ServiceChargeAccountID *uuid.UUID      `gorm:"type:uuid"`
	InterestEarned         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestAccountID      *uuid.UUID      `gorm:"type:uuid"`
	Status                 SessionStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Marks                  []SessionMark   `gorm:"foreignKey:SessionID;references:ID"`
	CommittedAt            *time.Time
	AbandonedAt            *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationSession) TableName() string {
	return "reconciliation_sessions"
}

// NewReconciliationSession opens a session for a bank account.
// BeginningBalance is the prior completed reconciliation's ending balance,
// or the account opening balance if none exists; the caller resolves it.
func NewReconciliationSession(
	bankAccountID uuid.UUID,
	statementDate time.Time,
	beginningBalance, endingBalance decimal.Decimal,
	serviceCharge, interestEarned decimal.Decimal,
) (*ReconciliationSession, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Bank account is required")
	}
	if statementDate.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Statement date is required")
	}
	if serviceCharge.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Service charge cannot be negative")
	}
	if interestEarned.IsNegative() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Interest earned cannot be negative")
	}

	s := &ReconciliationSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BankAccountID:     bankAccountID,
		StatementDate:     statementDate,
		BeginningBalance:  beginningBalance.Round(2),
		EndingBalance:     endingBalance.Round(2),
		ServiceCharge:     serviceCharge.Round(2),
		InterestEarned:    interestEarned.Round(2),
		Status:            SessionStatusOpen,
		Marks:             make([]SessionMark, 0),
	}

	s.AddDomainEvent(NewSessionOpenedEvent(s))

	return s, nil
}

// IsOpen reports whether the session still accepts marks
func (s *ReconciliationSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

func (s *ReconciliationSession) ensureOpen() error {
	if !s.IsOpen() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Session is %s, not open", s.Status))
	}
	return nil
}

func (s *ReconciliationSession) findMark(kind MarkKind, itemID uuid.UUID) int {
	for i, m := range s.Marks {
		if m.Kind == kind && m.ItemID == itemID {
			return i
		}
	}
	return -1
}

// MarkTransaction marks a bank statement line as cleared within the session
func (s *ReconciliationSession) MarkTransaction(tx *BankTransaction) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if tx == nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "Bank transaction is required")
	}
	if tx.BankAccountID != s.BankAccountID {
		return shared.NewDomainError(shared.ErrCodeValidation,
			"Bank transaction belongs to a different account")
	}
	if tx.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			"Bank transaction is already reconciled")
	}
	if s.findMark(MarkKindBankTransaction, tx.ID) >= 0 {
		return nil // marking twice is a no-op
	}
	s.Marks = append(s.Marks, SessionMark{
		ID:        uuid.New(),
		SessionID: s.ID,
		Kind:      MarkKindBankTransaction,
		ItemID:    tx.ID,
		Amount:    tx.Amount,
		Inflow:    tx.Type.IsInflow(),
		MarkedAt:  time.Now(),
	})
	s.IncrementVersion()
	return nil
}

// MarkPayment marks a recorded payment as cleared within the session.
// Received payments count as deposits, paid payments as withdrawals.
func (s *ReconciliationSession) MarkPayment(p *Payment) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if p == nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "Payment is required")
	}
	if p.BankAccountID != s.BankAccountID {
		return shared.NewDomainError(shared.ErrCodeValidation,
			"Payment belongs to a different bank account")
	}
	if p.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			fmt.Sprintf("Payment %s is already reconciled", p.Number))
	}
	if p.Status.IsTerminal() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot mark payment in %s status", p.Status))
	}
	if s.findMark(MarkKindPayment, p.ID) >= 0 {
		return nil
	}
	s.Marks = append(s.Marks, SessionMark{
		ID:        uuid.New(),
		SessionID: s.ID,
		Kind:      MarkKindPayment,
		ItemID:    p.ID,
		Amount:    p.Amount,
		Inflow:    p.Direction == PaymentDirectionReceived,
		MarkedAt:  time.Now(),
	})
	s.IncrementVersion()
	return nil
}

// Unmark removes a mark from the open session
func (s *ReconciliationSession) Unmark(kind MarkKind, itemID uuid.UUID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	i := s.findMark(kind, itemID)
	if i < 0 {
		return shared.ErrNotFound
	}
	s.Marks = append(s.Marks[:i], s.Marks[i+1:]...)
	s.IncrementVersion()
	return nil
}

// ClearedBalance is beginning balance plus marked inflows minus marked
// outflows, minus service charge, plus interest earned.
func (s *ReconciliationSession) ClearedBalance() decimal.Decimal {
	balance := s.BeginningBalance
	for _, m := range s.Marks {
		if m.Inflow {
			balance = balance.Add(m.Amount)
		} else {
			balance = balance.Sub(m.Amount)
		}
	}
	return balance.Sub(s.ServiceCharge).Add(s.InterestEarned).Round(2)
}

// Difference is the statement ending balance minus the cleared balance.
// Zero means the session balances.
func (s *ReconciliationSession) Difference() decimal.Decimal {
	return s.EndingBalance.Sub(s.ClearedBalance()).Round(2)
}

// Commit closes the session and produces the immutable BankReconciliation
// record. A non-zero difference does not block the commit; it is persisted
// verbatim for audit. The caller is responsible for marking every marked
// item reconciled in the same store transaction.
func (s *ReconciliationSession) Commit(now time.Time, reconciledBy *uuid.UUID) (*BankReconciliation, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	clearedBalance := s.ClearedBalance()
	difference := s.Difference()

	s.Status = SessionStatusCommitted
	t := now
	s.CommittedAt = &t
	s.IncrementVersion()

	rec := &BankReconciliation{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		SessionID:              s.ID,
		BankAccountID:          s.BankAccountID,
		StatementDate:          s.StatementDate,
		BeginningBalance:       s.BeginningBalance,
		EndingBalance:          s.EndingBalance,
		ServiceCharge:          s.ServiceCharge,
		ServiceChargeAccountID: s.ServiceChargeAccountID,
		InterestEarned:         s.InterestEarned,
		InterestAccountID:      s.InterestAccountID,
		ClearedBalance:         clearedBalance,
		Difference:             difference,
		IsCompleted:            true,
		ReconciledBy:           reconciledBy,
		ReconciledAt:           now,
	}

	s.AddDomainEvent(NewSessionCommittedEvent(s, rec))

	return rec, nil
}

// Abandon discards the session and all its marks. No marked item is touched.
func (s *ReconciliationSession) Abandon(now time.Time) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	s.Status = SessionStatusAbandoned
	t := now
	s.AbandonedAt = &t
	s.Marks = s.Marks[:0]
	s.IncrementVersion()
	return nil
}

// BankReconciliation is the immutable record of one committed session
type BankReconciliation struct {
	shared.BaseAggregateRoot
	SessionID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BankAccountID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	StatementDate          time.Time       `gorm:"not null"`
	BeginningBalance       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EndingBalance          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ServiceCharge          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ServiceChargeAccountID *uuid.UUID      `gorm:"type:uuid"`
	InterestEarned         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InterestAccountID      *uuid.UUID      `gorm:"type:uuid"`
	ClearedBalance         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Difference             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsCompleted            bool            `gorm:"not null;default:true"`
	ReconciledBy           *uuid.UUID      `gorm:"type:uuid"`
	ReconciledAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankReconciliation) TableName() string {
	return "bank_reconciliations"
}
