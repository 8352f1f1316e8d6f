package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository provides access to the chart of accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, code string) (*Account, error)
	FindAll(ctx context.Context) ([]Account, error)
	FindByType(ctx context.Context, accountType AccountType) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	SaveAll(ctx context.Context, accounts []*Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// JournalRepository provides access to two-sided postings
type JournalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Journal, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]Journal, error)
	FindBySource(ctx context.Context, sourceType SourceDocumentType, sourceID uuid.UUID) ([]Journal, error)
	// SaveWithAccounts persists the journal and the touched accounts in one
	// store transaction. A partial write surfaces as POSTING_FAILED.
	SaveWithAccounts(ctx context.Context, journal *Journal, accounts []*Account) error
}

// GeneralJournalRepository provides access to multi-line entries
type GeneralJournalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GeneralJournal, error)
	FindByReference(ctx context.Context, reference string) (*GeneralJournal, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]GeneralJournal, error)
	// SaveWithAccounts persists header, lines, and touched accounts atomically.
	SaveWithAccounts(ctx context.Context, entry *GeneralJournal, accounts []*Account) error
	// NextReference generates the next JE-NNNNNN reference.
	NextReference(ctx context.Context) (string, error)
}

// LedgerEntryReader scans the flat debit/credit facts that feed balance
// aggregation and financial reports.
type LedgerEntryReader interface {
	ScanEntries(ctx context.Context, from, to time.Time, branchID *uuid.UUID) ([]LedgerEntry, error)
	ScanAccountEntries(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]LedgerEntry, error)
}
