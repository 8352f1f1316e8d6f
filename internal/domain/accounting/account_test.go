package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smbledger/backend/internal/domain/shared"
)

func mustAccount(t *testing.T, code, name string, accountType AccountType, opening float64) *Account {
	t.Helper()
	a, err := NewAccount(code, name, accountType, decimal.NewFromFloat(opening))
	require.NoError(t, err)
	return a
}

func TestAccountTypeCategory(t *testing.T) {
	assert.Equal(t, AccountTypeAsset, AccountTypeBank.Category())
	assert.Equal(t, AccountTypeAsset, AccountTypeAccountsReceivable.Category())
	assert.Equal(t, AccountTypeAsset, AccountTypeFixedAsset.Category())
	assert.Equal(t, AccountTypeLiability, AccountTypeAccountsPayable.Category())
	assert.Equal(t, AccountTypeLiability, AccountTypeOtherCurrentLiability.Category())
	assert.Equal(t, AccountTypeExpense, AccountTypeCostOfGoodsSold.Category())
	assert.Equal(t, AccountTypeEquity, AccountTypeEquity.Category())
}

func TestAccountTypeNormalSide(t *testing.T) {
	assert.True(t, AccountTypeAsset.IsDebitNormal())
	assert.True(t, AccountTypeExpense.IsDebitNormal())
	assert.True(t, AccountTypeBank.IsDebitNormal())
	assert.True(t, AccountTypeCostOfGoodsSold.IsDebitNormal())
	assert.False(t, AccountTypeLiability.IsDebitNormal())
	assert.False(t, AccountTypeEquity.IsDebitNormal())
	assert.False(t, AccountTypeIncome.IsDebitNormal())
	assert.False(t, AccountTypeAccountsPayable.IsDebitNormal())
}

func TestNewAccount(t *testing.T) {
	t.Run("creates account with valid inputs", func(t *testing.T) {
		a, err := NewAccount("1000", "Checking", AccountTypeBank, decimal.NewFromInt(500))
		require.NoError(t, err)
		assert.Equal(t, "1000", a.Code)
		assert.True(t, a.IsActive)
		assert.False(t, a.IsSystem)
		assert.True(t, a.OpeningBalance.Equal(decimal.NewFromInt(500)))
		assert.True(t, a.CurrentBalance.Equal(a.OpeningBalance))
		assert.NotEmpty(t, a.GetDomainEvents())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewAccount("", "Checking", AccountTypeBank, decimal.Zero)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))
	})

	t.Run("fails with invalid type", func(t *testing.T) {
		_, err := NewAccount("1000", "Checking", AccountType("BOGUS"), decimal.Zero)
		require.Error(t, err)
	})
}

func TestSystemAccountProtection(t *testing.T) {
	a, err := NewSystemAccount("3000", "Retained Earnings", AccountTypeEquity)
	require.NoError(t, err)
	assert.True(t, a.IsSystem)

	t.Run("cannot be deleted", func(t *testing.T) {
		err := a.EnsureDeletable()
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeSystemAccountProtected))
	})

	t.Run("cannot change type", func(t *testing.T) {
		err := a.ChangeType(AccountTypeIncome)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.ErrCodeSystemAccountProtected))
		assert.Equal(t, AccountTypeEquity, a.Type)
	})

	t.Run("regular account can change type", func(t *testing.T) {
		b := mustAccount(t, "5000", "Misc Expense", AccountTypeExpense, 0)
		require.NoError(t, b.ChangeType(AccountTypeCostOfGoodsSold))
		assert.Equal(t, AccountTypeCostOfGoodsSold, b.Type)
	})
}

func TestAccountBalanceSignConventions(t *testing.T) {
	t.Run("debit increases asset balance", func(t *testing.T) {
		a := mustAccount(t, "1000", "Cash", AccountTypeAsset, 1000)
		a.ApplyDebit(decimal.NewFromInt(500))
		assert.Equal(t, "1500.00", a.CurrentBalance.StringFixed(2))
	})

	t.Run("credit increases liability balance", func(t *testing.T) {
		b := mustAccount(t, "2000", "Loan", AccountTypeLiability, 0)
		b.ApplyCredit(decimal.NewFromInt(500))
		assert.Equal(t, "500.00", b.CurrentBalance.StringFixed(2))
	})

	t.Run("credit decreases asset balance", func(t *testing.T) {
		a := mustAccount(t, "1000", "Cash", AccountTypeAsset, 1000)
		a.ApplyCredit(decimal.NewFromInt(250))
		assert.Equal(t, "750.00", a.CurrentBalance.StringFixed(2))
	})

	t.Run("debit decreases income balance", func(t *testing.T) {
		r := mustAccount(t, "4000", "Sales", AccountTypeIncome, 0)
		r.ApplyCredit(decimal.NewFromInt(100))
		r.ApplyDebit(decimal.NewFromInt(30))
		assert.Equal(t, "70.00", r.CurrentBalance.StringFixed(2))
	})
}
