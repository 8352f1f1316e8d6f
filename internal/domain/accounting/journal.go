package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// SourceDocumentType identifies the document a posting originated from
type SourceDocumentType string

const (
	SourceInvoice        SourceDocumentType = "INVOICE"
	SourceBill           SourceDocumentType = "BILL"
	SourcePayment        SourceDocumentType = "PAYMENT"
	SourceReconciliation SourceDocumentType = "RECONCILIATION"
	SourceManual         SourceDocumentType = "MANUAL"
)

// Journal is a two-sided posting: one debit account, one credit account,
// one positive amount. The simplest balanced entry the ledger accepts.
type Journal struct {
	shared.BaseAggregateRoot
	DebitAccountID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	CreditAccountID uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Date            time.Time          `gorm:"not null;index"`
	Description     string             `gorm:"type:varchar(500)"`
	SourceType      SourceDocumentType `gorm:"type:varchar(30);not null;default:'MANUAL'"`
	SourceID        *uuid.UUID         `gorm:"type:uuid;index"`
	BranchID        *uuid.UUID         `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Journal) TableName() string {
	return "journals"
}

// NewJournal creates a two-sided posting
func NewJournal(debitAccountID, creditAccountID uuid.UUID, amount decimal.Decimal, date time.Time) (*Journal, error) {
	if debitAccountID == uuid.Nil || creditAccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Both debit and credit accounts are required")
	}
	if debitAccountID == creditAccountID {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Debit and credit accounts must differ")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Posting amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Posting date is required")
	}

	return &Journal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DebitAccountID:    debitAccountID,
		CreditAccountID:   creditAccountID,
		Amount:            amount.Round(2),
		Date:              date,
		SourceType:        SourceManual,
	}, nil
}

// WithSource tags the posting with its originating document
func (j *Journal) WithSource(sourceType SourceDocumentType, sourceID uuid.UUID) *Journal {
	j.SourceType = sourceType
	id := sourceID
	j.SourceID = &id
	return j
}

// JournalEntryLine is one row of a multi-line general journal entry.
// Exactly one of Debit/Credit is non-zero.
type JournalEntryLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	GeneralJournalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Debit            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Credit           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Memo             string          `gorm:"type:varchar(500)"`
	LineNumber       int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalEntryLine) TableName() string {
	return "journal_entry_lines"
}

// IsDebit reports whether the line carries the debit side
func (l *JournalEntryLine) IsDebit() bool {
	return l.Debit.GreaterThan(decimal.Zero)
}

// JournalLineInput is the caller-supplied shape of one entry line
type JournalLineInput struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// GeneralJournal is a multi-line journal entry: a dated header plus N lines
// whose debits and credits must balance to the cent.
type GeneralJournal struct {
	shared.BaseAggregateRoot
	Reference   string             `gorm:"type:varchar(30);not null;uniqueIndex"`
	Date        time.Time          `gorm:"not null;index"`
	Description string             `gorm:"type:varchar(500)"`
	TotalDebit  decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TotalCredit decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	SourceType  SourceDocumentType `gorm:"type:varchar(30);not null;default:'MANUAL'"`
	SourceID    *uuid.UUID         `gorm:"type:uuid;index"`
	BranchID    *uuid.UUID         `gorm:"type:uuid;index"`
	Lines       []JournalEntryLine `gorm:"foreignKey:GeneralJournalID;references:ID"`
}

// TableName returns the table name for GORM
func (GeneralJournal) TableName() string {
	return "general_journals"
}

// NewGeneralJournal creates a balanced multi-line entry. Every line must carry
// exactly one of debit/credit, and the entry must balance to the cent.
func NewGeneralJournal(date time.Time, reference, description string, lines []JournalLineInput) (*GeneralJournal, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Entry date is required")
	}
	if len(lines) < 2 {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "A journal entry needs at least two lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	entryLines := make([]JournalEntryLine, 0, len(lines))
	gjID := uuid.New()

	for i, in := range lines {
		if in.AccountID == uuid.Nil {
			return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Line %d: account is required", i+1))
		}
		if in.Debit.IsNegative() || in.Credit.IsNegative() {
			return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Line %d: amounts cannot be negative", i+1))
		}
		debit := in.Debit.Round(2)
		credit := in.Credit.Round(2)
		if debit.IsZero() == credit.IsZero() {
			return nil, shared.NewDomainError(shared.ErrCodeValidation,
				fmt.Sprintf("Line %d: exactly one of debit or credit must be non-zero", i+1))
		}
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
		entryLines = append(entryLines, JournalEntryLine{
			ID:               uuid.New(),
			GeneralJournalID: gjID,
			AccountID:        in.AccountID,
			Debit:            debit,
			Credit:           credit,
			Memo:             in.Memo,
			LineNumber:       i + 1,
		})
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, shared.NewDomainError(shared.ErrCodeUnbalancedJournal,
			fmt.Sprintf("Journal entry does not balance: debits %s, credits %s",
				totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
	}

	gj := &GeneralJournal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Date:              date,
		Description:       description,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		SourceType:        SourceManual,
		Lines:             entryLines,
	}
	gj.ID = gjID

	return gj, nil
}

// IsBalanced re-checks the balancing invariant over the stored lines
func (gj *GeneralJournal) IsBalanced() bool {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range gj.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Equal(credits)
}

// WithSource tags the entry with its originating document
func (gj *GeneralJournal) WithSource(sourceType SourceDocumentType, sourceID uuid.UUID) *GeneralJournal {
	gj.SourceType = sourceType
	id := sourceID
	gj.SourceID = &id
	return gj
}
