package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smbledger/backend/internal/domain/accounting"
)

// GormLedgerEntryReader implements accounting.LedgerEntryReader by flattening
// two-sided journals and general journal lines into per-account debit/credit
// facts. Every journal contributes one debit fact and one credit fact; every
// entry line contributes exactly one fact.
type GormLedgerEntryReader struct {
	db *gorm.DB
}

// NewGormLedgerEntryReader creates a new GormLedgerEntryReader
func NewGormLedgerEntryReader(db *gorm.DB) *GormLedgerEntryReader {
	return &GormLedgerEntryReader{db: db}
}

// ScanEntries returns all ledger facts in the window, optionally filtered to
// one branch.
func (r *GormLedgerEntryReader) ScanEntries(ctx context.Context, from, to time.Time, branchID *uuid.UUID) ([]accounting.LedgerEntry, error) {
	journalQuery := dbFor(ctx, r.db).
		Where("date >= ? AND date <= ?", from, to)
	if branchID != nil {
		journalQuery = journalQuery.Where("branch_id = ?", *branchID)
	}

	var journals []accounting.Journal
	if err := journalQuery.Find(&journals).Error; err != nil {
		return nil, err
	}

	entryQuery := dbFor(ctx, r.db).
		Preload("Lines").
		Where("date >= ? AND date <= ?", from, to)
	if branchID != nil {
		entryQuery = entryQuery.Where("branch_id = ?", *branchID)
	}

	var generalJournals []accounting.GeneralJournal
	if err := entryQuery.Find(&generalJournals).Error; err != nil {
		return nil, err
	}

	entries := make([]accounting.LedgerEntry, 0, 2*len(journals))
	for i := range journals {
		entries = append(entries, journalFacts(&journals[i])...)
	}
	for i := range generalJournals {
		entries = append(entries, generalJournalFacts(&generalJournals[i])...)
	}

	sortEntries(entries)
	return entries, nil
}

// ScanAccountEntries returns the facts touching one account, ordered by date
func (r *GormLedgerEntryReader) ScanAccountEntries(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]accounting.LedgerEntry, error) {
	var journals []accounting.Journal
	if err := dbFor(ctx, r.db).
		Where("(debit_account_id = ? OR credit_account_id = ?)", accountID, accountID).
		Where("date >= ? AND date <= ?", from, to).
		Find(&journals).Error; err != nil {
		return nil, err
	}

	var generalJournals []accounting.GeneralJournal
	if err := dbFor(ctx, r.db).
		Preload("Lines").
		Where("date >= ? AND date <= ?", from, to).
		Where("id IN (?)", r.db.
			Table("journal_entry_lines").
			Select("general_journal_id").
			Where("account_id = ?", accountID)).
		Find(&generalJournals).Error; err != nil {
		return nil, err
	}

	entries := make([]accounting.LedgerEntry, 0, len(journals))
	for i := range journals {
		for _, e := range journalFacts(&journals[i]) {
			if e.AccountID == accountID {
				entries = append(entries, e)
			}
		}
	}
	for i := range generalJournals {
		for _, e := range generalJournalFacts(&generalJournals[i]) {
			if e.AccountID == accountID {
				entries = append(entries, e)
			}
		}
	}

	sortEntries(entries)
	return entries, nil
}

func journalFacts(j *accounting.Journal) []accounting.LedgerEntry {
	return []accounting.LedgerEntry{
		{
			AccountID:   j.DebitAccountID,
			Date:        j.Date,
			Debit:       j.Amount,
			Credit:      decimal.Zero,
			BranchID:    j.BranchID,
			Description: j.Description,
		},
		{
			AccountID:   j.CreditAccountID,
			Date:        j.Date,
			Debit:       decimal.Zero,
			Credit:      j.Amount,
			BranchID:    j.BranchID,
			Description: j.Description,
		},
	}
}

func generalJournalFacts(gj *accounting.GeneralJournal) []accounting.LedgerEntry {
	entries := make([]accounting.LedgerEntry, 0, len(gj.Lines))
	for _, line := range gj.Lines {
		entries = append(entries, accounting.LedgerEntry{
			AccountID:   line.AccountID,
			Date:        gj.Date,
			Debit:       line.Debit,
			Credit:      line.Credit,
			BranchID:    gj.BranchID,
			Description: lineDescription(gj, line),
			Reference:   gj.Reference,
		})
	}
	return entries
}

func lineDescription(gj *accounting.GeneralJournal, line accounting.JournalEntryLine) string {
	if line.Memo != "" {
		return line.Memo
	}
	return gj.Description
}

func sortEntries(entries []accounting.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
