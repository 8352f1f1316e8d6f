package banking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchTx(t *testing.T, bankID uuid.UUID, txType BankTransactionType, amount float64, date time.Time) *BankTransaction {
	t.Helper()
	tx, err := NewBankTransaction(bankID, date, txType, decimal.NewFromFloat(amount), "", "")
	require.NoError(t, err)
	return tx
}

func matchPayment(t *testing.T, number string, bankID uuid.UUID, direction PaymentDirection, amount float64, date time.Time) *Payment {
	t.Helper()
	p, err := NewPayment(number, decimal.NewFromFloat(amount), date, PaymentMethodBankTransfer, direction, bankID)
	require.NoError(t, err)
	return p
}

func TestStatementMatcher(t *testing.T) {
	matcher := NewStatementMatcher()
	bankID := uuid.New()
	base := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("exact amount within tight date window", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 250.00, base)
		p := matchPayment(t, "PAY-000001", bankID, PaymentDirectionPaid, 250.00, base.AddDate(0, 0, -2))

		s := matcher.Match(tx, []*Payment{p})
		require.NotNil(t, s)
		assert.Equal(t, MatchExact, s.Confidence)
		assert.Equal(t, p.ID, s.Payment.ID)
	})

	t.Run("exact amount with looser date is high", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 250.00, base)
		p := matchPayment(t, "PAY-000002", bankID, PaymentDirectionPaid, 250.00, base.AddDate(0, 0, -6))

		s := matcher.Match(tx, []*Payment{p})
		require.NotNil(t, s)
		assert.Equal(t, MatchHigh, s.Confidence)
	})

	t.Run("amount within one percent is high", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
		p := matchPayment(t, "PAY-000003", bankID, PaymentDirectionPaid, 99.50, base)

		s := matcher.Match(tx, []*Payment{p})
		require.NotNil(t, s)
		assert.Equal(t, MatchHigh, s.Confidence)
	})

	t.Run("amount within five percent is medium", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
		p := matchPayment(t, "PAY-000004", bankID, PaymentDirectionPaid, 96.00, base)

		s := matcher.Match(tx, []*Payment{p})
		require.NotNil(t, s)
		assert.Equal(t, MatchMedium, s.Confidence)
	})

	t.Run("no suggestion when nothing is close", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
		p := matchPayment(t, "PAY-000005", bankID, PaymentDirectionPaid, 500.00, base)

		assert.Nil(t, matcher.Match(tx, []*Payment{p}))
	})

	t.Run("direction must agree", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionDeposit, 100.00, base)
		p := matchPayment(t, "PAY-000006", bankID, PaymentDirectionPaid, 100.00, base)

		assert.Nil(t, matcher.Match(tx, []*Payment{p}))
	})

	t.Run("ignores other bank accounts and reconciled payments", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
		other := matchPayment(t, "PAY-000007", uuid.New(), PaymentDirectionPaid, 100.00, base)
		recd := matchPayment(t, "PAY-000008", bankID, PaymentDirectionPaid, 100.00, base)
		require.NoError(t, recd.MarkReconciled(base, nil))

		assert.Nil(t, matcher.Match(tx, []*Payment{other, recd}))
	})

	t.Run("prefers the best candidate", func(t *testing.T) {
		tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
		medium := matchPayment(t, "PAY-000009", bankID, PaymentDirectionPaid, 96.00, base)
		exact := matchPayment(t, "PAY-000010", bankID, PaymentDirectionPaid, 100.00, base)

		s := matcher.Match(tx, []*Payment{medium, exact})
		require.NotNil(t, s)
		assert.Equal(t, MatchExact, s.Confidence)
		assert.Equal(t, exact.ID, s.Payment.ID)
	})
}

func TestMatchAllConsumesPayments(t *testing.T) {
	matcher := NewStatementMatcher()
	bankID := uuid.New()
	base := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tx1 := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
	tx2 := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
	p := matchPayment(t, "PAY-000020", bankID, PaymentDirectionPaid, 100.00, base)

	suggestions := matcher.MatchAll([]*BankTransaction{tx1, tx2}, []*Payment{p})
	// The exact match on tx1 consumes the only payment.
	require.Len(t, suggestions, 1)
	assert.Equal(t, tx1.ID, suggestions[0].Transaction.ID)
}

func TestSuggestionsAreAdvisory(t *testing.T) {
	bankID := uuid.New()
	base := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tx := matchTx(t, bankID, BankTransactionWithdrawal, 100.00, base)
	p := matchPayment(t, "PAY-000030", bankID, PaymentDirectionPaid, 100.00, base)

	require.NoError(t, tx.SuggestMatch(p.ID, p.Amount, MatchExact))
	assert.False(t, tx.Reconciled)
	assert.False(t, p.Reconciled)
	require.NotNil(t, tx.MatchConfidence)
	assert.Equal(t, MatchExact, *tx.MatchConfidence)
}
