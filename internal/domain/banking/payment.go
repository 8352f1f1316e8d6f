package banking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusVoided    PaymentStatus = "VOIDED"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusVoided:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusVoided || s == PaymentStatusCancelled
}

// ApprovalStatus represents the approval state of a payment
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// PaymentDirection splits payments by money flow for reconciliation
type PaymentDirection string

const (
	PaymentDirectionPaid     PaymentDirection = "PAID"     // money out
	PaymentDirectionReceived PaymentDirection = "RECEIVED" // money in
)

// PaymentMethod represents how the payment moved
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer, PaymentMethodCreditCard, PaymentMethodOther:
		return true
	}
	return false
}

// DocumentKind identifies the document a payment settles
type DocumentKind string

const (
	DocumentKindInvoice       DocumentKind = "INVOICE"
	DocumentKindBill          DocumentKind = "BILL"
	DocumentKindPurchaseOrder DocumentKind = "PURCHASE_ORDER"
)

// Payment records money moving through a bank account, optionally settling
// exactly one document (invoice, bill, or purchase order).
// Lifecycle: created -> approved -> cleared -> reconciled; void is terminal
// and only allowed before reconciliation.
type Payment struct {
	shared.BaseAggregateRoot
	Number           string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	Amount           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	PaymentDate      time.Time        `gorm:"not null;index"`
	PaymentMethod    PaymentMethod    `gorm:"type:varchar(30);not null"`
	Direction        PaymentDirection `gorm:"type:varchar(10);not null;index"`
	Status           PaymentStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApprovalStatus   ApprovalStatus   `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DocumentKind     *DocumentKind    `gorm:"type:varchar(20)"`
	DocumentID       *uuid.UUID       `gorm:"type:uuid;index"`
	ExpenseAccountID *uuid.UUID       `gorm:"type:uuid"`
	BankAccountID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	BranchID         *uuid.UUID       `gorm:"type:uuid;index"`
	Reference        string           `gorm:"type:varchar(100)"`
	Memo             string           `gorm:"type:varchar(500)"`
	Reconciled       bool             `gorm:"not null;default:false;index"`
	ReconciledAt     *time.Time
	ReconciledBy     *uuid.UUID `gorm:"type:uuid"`
	ClearedDate      *time.Time
	VoidedAt         *time.Time
	VoidReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment. Number is the PAY-NNNNNN business number
// generated by the repository before persisting.
func NewPayment(
	number string,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	direction PaymentDirection,
	bankAccountID uuid.UUID,
) (*Payment, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Payment number cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Payment method is not valid")
	}
	if direction != PaymentDirectionPaid && direction != PaymentDirectionReceived {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Payment direction must be PAID or RECEIVED")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Bank account is required")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Amount:            amount.Round(2),
		PaymentDate:       paymentDate,
		PaymentMethod:     method,
		Direction:         direction,
		Status:            PaymentStatusPending,
		ApprovalStatus:    ApprovalStatusPending,
		BankAccountID:     bankAccountID,
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// AttachDocument links the payment to the document it settles.
// A payment settles at most one document.
func (p *Payment) AttachDocument(kind DocumentKind, documentID uuid.UUID) error {
	if p.DocumentID != nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "Payment is already linked to a document")
	}
	if documentID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "Document ID cannot be empty")
	}
	k := kind
	id := documentID
	p.DocumentKind = &k
	p.DocumentID = &id
	p.IncrementVersion()
	return nil
}

// Approve marks the payment approved
func (p *Payment) Approve() error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}
	p.ApprovalStatus = ApprovalStatusApproved
	p.IncrementVersion()
	return nil
}

// Reject marks the payment rejected
func (p *Payment) Reject() error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	p.ApprovalStatus = ApprovalStatusRejected
	p.IncrementVersion()
	return nil
}

// Complete marks the payment as having actually moved money
func (p *Payment) Complete() error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot complete payment in %s status", p.Status))
	}
	p.Status = PaymentStatusCompleted
	p.IncrementVersion()
	return nil
}

// Clear records the date the payment cleared the bank
func (p *Payment) Clear(clearedDate time.Time) error {
	if p.Status.IsTerminal() {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Cannot clear payment in %s status", p.Status))
	}
	d := clearedDate
	p.ClearedDate = &d
	p.IncrementVersion()
	return nil
}

// MarkReconciled is called by a committing reconciliation session.
// Fails with ALREADY_RECONCILED if the payment was reconciled before.
func (p *Payment) MarkReconciled(now time.Time, reconciledBy *uuid.UUID) error {
	if p.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			fmt.Sprintf("Payment %s is already reconciled", p.Number))
	}
	p.Reconciled = true
	t := now
	p.ReconciledAt = &t
	p.ReconciledBy = reconciledBy
	if p.ClearedDate == nil {
		p.ClearedDate = &t
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentReconciledEvent(p))
	return nil
}

// Void cancels the payment. Terminal; not allowed once reconciled.
func (p *Payment) Void(now time.Time, reason string) error {
	if p.Reconciled {
		return shared.NewDomainError(shared.ErrCodeAlreadyReconciled,
			fmt.Sprintf("Payment %s is reconciled and cannot be voided", p.Number))
	}
	if p.Status == PaymentStatusVoided {
		return shared.NewDomainError(shared.ErrInvalidState.Code, "Payment is already voided")
	}
	p.Status = PaymentStatusVoided
	t := now
	p.VoidedAt = &t
	p.VoidReason = reason
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentVoidedEvent(p))
	return nil
}
