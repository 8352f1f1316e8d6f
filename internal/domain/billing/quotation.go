package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/smbledger/backend/internal/domain/shared"
)

// QuotationStatus tracks a quote's path from draft to an accepted sale
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "DRAFT"
	QuotationStatusSent     QuotationStatus = "SENT"
	QuotationStatusAccepted QuotationStatus = "ACCEPTED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
)

func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent,
		QuotationStatusAccepted, QuotationStatusRejected:
		return true
	}
	return false
}

// Quotation is a priced offer to a customer. Accepting it produces an
// invoice; the quote itself never touches the ledger.
type Quotation struct {
	DocumentCore
	CustomerID   *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName string          `gorm:"type:varchar(200);not null"`
	Status       QuotationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ExpiryDate   *time.Time
	// InvoiceID links the invoice created on acceptance.
	InvoiceID *uuid.UUID `gorm:"type:uuid;index"`
}

func (Quotation) TableName() string {
	return "quotations"
}

func NewQuotation(number, customerName string, date time.Time, expiryDate *time.Time) (*Quotation, error) {
	if customerName == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Customer name cannot be empty")
	}
	core, err := newDocumentCore(number, date)
	if err != nil {
		return nil, err
	}
	if expiryDate != nil && expiryDate.Before(date) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Expiry date cannot be before the quotation date")
	}
	return &Quotation{
		DocumentCore: core,
		CustomerName: customerName,
		Status:       QuotationStatusDraft,
		ExpiryDate:   expiryDate,
	}, nil
}

// IsExpired derives expiry from an explicit evaluation time.
func (q *Quotation) IsExpired(now time.Time) bool {
	if q.ExpiryDate == nil {
		return false
	}
	return q.Status != QuotationStatusAccepted && now.After(*q.ExpiryDate)
}

func (q *Quotation) MarkSent(now time.Time) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only draft quotations can be sent")
	}
	q.Status = QuotationStatusSent
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

// CanAccept reports whether the quote is currently acceptable, without
// mutating it. Callers that raise an invoice first use this to avoid
// creating one for a quote that will refuse the transition.
func (q *Quotation) CanAccept(now time.Time) error {
	if q.Status != QuotationStatusSent {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only sent quotations can be accepted")
	}
	if q.IsExpired(now) {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Cannot accept an expired quotation")
	}
	return nil
}

// Accept converts the quote, linking the invoice raised from it. Expired
// quotes cannot be accepted.
func (q *Quotation) Accept(invoiceID uuid.UUID, now time.Time) error {
	if err := q.CanAccept(now); err != nil {
		return err
	}
	q.Status = QuotationStatusAccepted
	q.InvoiceID = &invoiceID
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}

func (q *Quotation) Reject(now time.Time) error {
	if q.Status != QuotationStatusSent {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Only sent quotations can be rejected")
	}
	q.Status = QuotationStatusRejected
	q.UpdatedAt = now
	q.IncrementVersion()
	return nil
}
