package banking

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// Event types for the banking context
const (
	EventTypePaymentCreated    = "banking.payment.created"
	EventTypePaymentReconciled = "banking.payment.reconciled"
	EventTypePaymentVoided     = "banking.payment.voided"
	EventTypeSessionOpened     = "banking.reconciliation.session_opened"
	EventTypeSessionCommitted  = "banking.reconciliation.session_committed"
)

// PaymentCreatedEvent is raised when a payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	Number        string           `json:"number"`
	Amount        decimal.Decimal  `json:"amount"`
	Direction     PaymentDirection `json:"direction"`
	BankAccountID uuid.UUID        `json:"bank_account_id"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, "Payment", p.ID),
		Number:          p.Number,
		Amount:          p.Amount,
		Direction:       p.Direction,
		BankAccountID:   p.BankAccountID,
	}
}

// PaymentReconciledEvent is raised when a session commit reconciles a payment
type PaymentReconciledEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewPaymentReconciledEvent creates a new PaymentReconciledEvent
func NewPaymentReconciledEvent(p *Payment) *PaymentReconciledEvent {
	return &PaymentReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReconciled, "Payment", p.ID),
		Number:          p.Number,
	}
}

// PaymentVoidedEvent is raised when a payment is voided. The billing side
// listens for it to recompute document totals.
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	Number       string        `json:"number"`
	DocumentKind *DocumentKind `json:"document_kind,omitempty"`
	DocumentID   *uuid.UUID    `json:"document_id,omitempty"`
}

// NewPaymentVoidedEvent creates a new PaymentVoidedEvent
func NewPaymentVoidedEvent(p *Payment) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, "Payment", p.ID),
		Number:          p.Number,
		DocumentKind:    p.DocumentKind,
		DocumentID:      p.DocumentID,
	}
}

// SessionOpenedEvent is raised when a reconciliation session begins
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	BankAccountID    uuid.UUID       `json:"bank_account_id"`
	BeginningBalance decimal.Decimal `json:"beginning_balance"`
	EndingBalance    decimal.Decimal `json:"ending_balance"`
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *ReconciliationSession) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSessionOpened, "ReconciliationSession", s.ID),
		BankAccountID:    s.BankAccountID,
		BeginningBalance: s.BeginningBalance,
		EndingBalance:    s.EndingBalance,
	}
}

// SessionCommittedEvent is raised when a session commits
type SessionCommittedEvent struct {
	shared.BaseDomainEvent
	BankAccountID  uuid.UUID       `json:"bank_account_id"`
	ClearedBalance decimal.Decimal `json:"cleared_balance"`
	Difference     decimal.Decimal `json:"difference"`
	MarkedItems    int             `json:"marked_items"`
}

// NewSessionCommittedEvent creates a new SessionCommittedEvent
func NewSessionCommittedEvent(s *ReconciliationSession, rec *BankReconciliation) *SessionCommittedEvent {
	return &SessionCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionCommitted, "ReconciliationSession", s.ID),
		BankAccountID:   s.BankAccountID,
		ClearedBalance:  rec.ClearedBalance,
		Difference:      rec.Difference,
		MarkedItems:     len(s.Marks),
	}
}
