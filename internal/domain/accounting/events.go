package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// Event types for the accounting context
const (
	EventTypeAccountCreated       = "accounting.account.created"
	EventTypeJournalPosted        = "accounting.journal.posted"
	EventTypeGeneralJournalPosted = "accounting.general_journal.posted"
)

// AccountCreatedEvent is raised when a chart-of-accounts entry is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, "Account", a.ID),
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     a.Type,
	}
}

// JournalPostedEvent is raised when a two-sided posting commits
type JournalPostedEvent struct {
	shared.BaseDomainEvent
	DebitAccountID  uuid.UUID       `json:"debit_account_id"`
	CreditAccountID uuid.UUID       `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
}

// NewJournalPostedEvent creates a new JournalPostedEvent
func NewJournalPostedEvent(j *Journal) *JournalPostedEvent {
	return &JournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalPosted, "Journal", j.ID),
		DebitAccountID:  j.DebitAccountID,
		CreditAccountID: j.CreditAccountID,
		Amount:          j.Amount,
		Date:            j.Date,
	}
}

// GeneralJournalPostedEvent is raised when a multi-line entry commits
type GeneralJournalPostedEvent struct {
	shared.BaseDomainEvent
	Reference  string          `json:"reference"`
	TotalDebit decimal.Decimal `json:"total_debit"`
	LineCount  int             `json:"line_count"`
}

// NewGeneralJournalPostedEvent creates a new GeneralJournalPostedEvent
func NewGeneralJournalPostedEvent(gj *GeneralJournal) *GeneralJournalPostedEvent {
	return &GeneralJournalPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGeneralJournalPosted, "GeneralJournal", gj.ID),
		Reference:       gj.Reference,
		TotalDebit:      gj.TotalDebit,
		LineCount:       len(gj.Lines),
	}
}
