package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smbledger/backend/internal/domain/shared"
)

var testDate = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestNewJournal(t *testing.T) {
	debitID := uuid.New()
	creditID := uuid.New()

	t.Run("creates valid posting", func(t *testing.T) {
		j, err := NewJournal(debitID, creditID, decimal.NewFromFloat(100.50), testDate)
		require.NoError(t, err)
		assert.Equal(t, debitID, j.DebitAccountID)
		assert.Equal(t, creditID, j.CreditAccountID)
		assert.Equal(t, "100.50", j.Amount.StringFixed(2))
		assert.Equal(t, SourceManual, j.SourceType)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewJournal(debitID, creditID, decimal.Zero, testDate)
		require.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewJournal(debitID, creditID, decimal.NewFromInt(-5), testDate)
		require.Error(t, err)
	})

	t.Run("rejects same debit and credit account", func(t *testing.T) {
		_, err := NewJournal(debitID, debitID, decimal.NewFromInt(10), testDate)
		require.Error(t, err)
	})

	t.Run("rejects zero date", func(t *testing.T) {
		_, err := NewJournal(debitID, creditID, decimal.NewFromInt(10), time.Time{})
		require.Error(t, err)
	})
}

func TestNewGeneralJournal(t *testing.T) {
	a1, a2, a3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("creates balanced entry", func(t *testing.T) {
		gj, err := NewGeneralJournal(testDate, "JE-000001", "Month-end accrual", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromInt(100)},
			{AccountID: a2, Credit: decimal.NewFromInt(60)},
			{AccountID: a3, Credit: decimal.NewFromInt(40)},
		})
		require.NoError(t, err)
		assert.True(t, gj.IsBalanced())
		assert.Equal(t, "100.00", gj.TotalDebit.StringFixed(2))
		assert.Equal(t, "100.00", gj.TotalCredit.StringFixed(2))
		require.Len(t, gj.Lines, 3)
		assert.Equal(t, 1, gj.Lines[0].LineNumber)
		for _, l := range gj.Lines {
			assert.Equal(t, gj.ID, l.GeneralJournalID)
		}
	})

	t.Run("rejects unbalanced entry", func(t *testing.T) {
		_, err := NewGeneralJournal(testDate, "JE-000002", "", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromInt(100)},
			{AccountID: a2, Credit: decimal.NewFromFloat(99.99)},
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeUnbalancedJournal))
	})

	t.Run("rejects line with both debit and credit", func(t *testing.T) {
		_, err := NewGeneralJournal(testDate, "JE-000003", "", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
			{AccountID: a2, Credit: decimal.NewFromInt(50)},
		})
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))
	})

	t.Run("rejects line with neither side", func(t *testing.T) {
		_, err := NewGeneralJournal(testDate, "JE-000004", "", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromInt(50)},
			{AccountID: a2},
		})
		require.Error(t, err)
	})

	t.Run("rejects single line", func(t *testing.T) {
		_, err := NewGeneralJournal(testDate, "JE-000005", "", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromInt(50)},
		})
		require.Error(t, err)
	})

	t.Run("balances to the cent", func(t *testing.T) {
		gj, err := NewGeneralJournal(testDate, "JE-000006", "", []JournalLineInput{
			{AccountID: a1, Debit: decimal.NewFromFloat(33.33)},
			{AccountID: a2, Debit: decimal.NewFromFloat(66.67)},
			{AccountID: a3, Credit: decimal.NewFromFloat(100.00)},
		})
		require.NoError(t, err)
		assert.True(t, gj.TotalDebit.Equal(gj.TotalCredit))
	})
}
