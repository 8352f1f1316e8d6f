package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(accountID uuid.UUID, day int, debit, credit float64) LedgerEntry {
	return LedgerEntry{
		AccountID: accountID,
		Date:      time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Debit:     decimal.NewFromFloat(debit),
		Credit:    decimal.NewFromFloat(credit),
	}
}

func periodOf(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestComputeBalancesSignPolicy(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	entries := []LedgerEntry{
		entry(accts["checking"].ID, 5, 500, 0),
		entry(accts["liabilities"].ID, 5, 0, 500),
	}
	set := agg.ComputeBalances(tree, entries, from, to, nil)

	// Debit-balance asset of 500 displays as +500; credit-balance liability
	// of 500 also displays as +500.
	assert.Equal(t, "500.00", set.Get(accts["checking"].ID).Balance.StringFixed(2))
	assert.Equal(t, "500.00", set.Get(accts["liabilities"].ID).Balance.StringFixed(2))
}

func TestComputeBalancesRollup(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	entries := []LedgerEntry{
		entry(accts["checking"].ID, 3, 100, 0),
		entry(accts["savings"].ID, 7, 200, 0),
		entry(accts["reserve"].ID, 9, 50, 0),
		entry(accts["assets"].ID, 11, 25, 0),
	}
	set := agg.ComputeBalances(tree, entries, from, to, nil)

	// savings rolls up its own 200 plus reserve's 50.
	assert.Equal(t, "250.00", set.Get(accts["savings"].ID).TotalBalance.StringFixed(2))
	// assets = own 25 + checking 100 + savings subtree 250.
	assert.Equal(t, "375.00", set.Get(accts["assets"].ID).TotalBalance.StringFixed(2))
	// leaves roll up to themselves.
	assert.Equal(t, "50.00", set.Get(accts["reserve"].ID).TotalBalance.StringFixed(2))
}

func TestComputeBalancesDateWindow(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()

	entries := []LedgerEntry{
		entry(accts["checking"].ID, 5, 100, 0),
		entry(accts["checking"].ID, 20, 300, 0),
	}
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	set := agg.ComputeBalances(tree, entries, from, to, nil)
	assert.Equal(t, "300.00", set.Get(accts["checking"].ID).Balance.StringFixed(2))
}

func TestComputeBalancesBranchFilter(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	branchA := uuid.New()
	branchB := uuid.New()

	e1 := entry(accts["checking"].ID, 5, 100, 0)
	e1.BranchID = &branchA
	e2 := entry(accts["checking"].ID, 6, 40, 0)
	e2.BranchID = &branchB

	t.Run("filters to one branch", func(t *testing.T) {
		set := agg.ComputeBalances(tree, []LedgerEntry{e1, e2}, from, to, &branchA)
		assert.Equal(t, "100.00", set.Get(accts["checking"].ID).Balance.StringFixed(2))
	})

	t.Run("nil branch includes all", func(t *testing.T) {
		set := agg.ComputeBalances(tree, []LedgerEntry{e1, e2}, from, to, nil)
		assert.Equal(t, "140.00", set.Get(accts["checking"].ID).Balance.StringFixed(2))
	})
}

func TestComputeBalancesIdempotent(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	entries := []LedgerEntry{
		entry(accts["checking"].ID, 3, 100, 25),
		entry(accts["savings"].ID, 7, 200, 0),
		entry(accts["liabilities"].ID, 8, 0, 75),
	}

	first := agg.ComputeBalances(tree, entries, from, to, nil)
	second := agg.ComputeBalances(tree, entries, from, to, nil)

	for _, a := range []string{"assets", "checking", "savings", "reserve", "liabilities"} {
		b1 := first.Get(accts[a].ID)
		b2 := second.Get(accts[a].ID)
		assert.True(t, b1.DebitTotal.Equal(b2.DebitTotal))
		assert.True(t, b1.CreditTotal.Equal(b2.CreditTotal))
		assert.True(t, b1.Balance.Equal(b2.Balance))
		assert.True(t, b1.TotalBalance.Equal(b2.TotalBalance))
	}
}

func TestShouldDisplay(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	entries := []LedgerEntry{
		entry(accts["reserve"].ID, 9, 50, 0),
	}
	set := agg.ComputeBalances(tree, entries, from, to, nil)

	// Parent with only child activity still displays.
	assert.True(t, set.ShouldDisplay(accts["savings"].ID))
	assert.True(t, set.ShouldDisplay(accts["assets"].ID))
	// Account with no balance and no activity anywhere below is suppressed.
	assert.False(t, set.ShouldDisplay(accts["checking"].ID))
	assert.False(t, set.ShouldDisplay(accts["liabilities"].ID))
	// Activity that nets to zero still displays.
	netZero := []LedgerEntry{
		entry(accts["checking"].ID, 10, 80, 0),
		entry(accts["checking"].ID, 12, 0, 80),
	}
	set = agg.ComputeBalances(tree, netZero, from, to, nil)
	assert.True(t, set.ShouldDisplay(accts["checking"].ID))
}

func TestCategoryTotal(t *testing.T) {
	tree, accts := buildTestChart(t)
	agg := NewBalanceAggregator()
	from, to := periodOf(t)

	entries := []LedgerEntry{
		entry(accts["checking"].ID, 3, 100, 0),
		entry(accts["reserve"].ID, 4, 50, 0),
		entry(accts["liabilities"].ID, 5, 0, 150),
	}
	set := agg.ComputeBalances(tree, entries, from, to, nil)

	require.Equal(t, "150.00", set.CategoryTotal(AccountTypeAsset).StringFixed(2))
	require.Equal(t, "150.00", set.CategoryTotal(AccountTypeLiability).StringFixed(2))
	require.Equal(t, "0.00", set.CategoryTotal(AccountTypeEquity).StringFixed(2))
}
