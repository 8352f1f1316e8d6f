package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// LedgerPoster is a domain service that creates balanced postings and keeps
// account running balances consistent with them. It works on loaded accounts;
// persisting the journal together with the touched accounts atomically is the
// application layer's job.
type LedgerPoster struct{}

// NewLedgerPoster creates a new LedgerPoster
func NewLedgerPoster() *LedgerPoster {
	return &LedgerPoster{}
}

// PostTwoSided records a single debit/credit pair and updates both running
// balances according to the accounts' normal sides.
func (p *LedgerPoster) PostTwoSided(debit, credit *Account, amount decimal.Decimal, date time.Time) (*Journal, error) {
	if debit == nil || credit == nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Both debit and credit accounts are required")
	}
	if !debit.IsActive {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Account %s is inactive", debit.Code))
	}
	if !credit.IsActive {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Account %s is inactive", credit.Code))
	}

	j, err := NewJournal(debit.ID, credit.ID, amount, date)
	if err != nil {
		return nil, err
	}

	debit.ApplyDebit(j.Amount)
	credit.ApplyCredit(j.Amount)

	j.AddDomainEvent(NewJournalPostedEvent(j))

	return j, nil
}

// PostMultiLine records a multi-line entry. Every referenced account must be
// present in the accounts map; balances are updated line by line. The caller
// supplies the reference (JE-NNNNNN) or leaves it empty for the application
// layer to generate before persisting.
func (p *LedgerPoster) PostMultiLine(
	date time.Time,
	reference, description string,
	lines []JournalLineInput,
	accounts map[uuid.UUID]*Account,
) (*GeneralJournal, error) {
	for i, l := range lines {
		a, ok := accounts[l.AccountID]
		if !ok {
			return nil, shared.NewDomainError(shared.ErrCodeValidation,
				fmt.Sprintf("Line %d: unknown account %s", i+1, l.AccountID))
		}
		if !a.IsActive {
			return nil, shared.NewDomainError(shared.ErrCodeValidation,
				fmt.Sprintf("Line %d: account %s is inactive", i+1, a.Code))
		}
	}

	gj, err := NewGeneralJournal(date, reference, description, lines)
	if err != nil {
		return nil, err
	}

	for _, l := range gj.Lines {
		a := accounts[l.AccountID]
		if l.IsDebit() {
			a.ApplyDebit(l.Debit)
		} else {
			a.ApplyCredit(l.Credit)
		}
	}

	gj.AddDomainEvent(NewGeneralJournalPostedEvent(gj))

	return gj, nil
}

// ReverseTwoSided posts the mirror image of an existing journal, dated at the
// given reversal date. Used when a source document is voided.
func (p *LedgerPoster) ReverseTwoSided(original *Journal, debit, credit *Account, date time.Time) (*Journal, error) {
	if original == nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Original journal is required")
	}
	if debit.ID != original.CreditAccountID || credit.ID != original.DebitAccountID {
		return nil, shared.NewDomainError(shared.ErrCodeValidation,
			"Reversal accounts must mirror the original posting")
	}
	j, err := p.PostTwoSided(debit, credit, original.Amount, date)
	if err != nil {
		return nil, err
	}
	j.Description = fmt.Sprintf("Reversal of %s", original.ID)
	j.SourceType = original.SourceType
	j.SourceID = original.SourceID
	return j, nil
}
