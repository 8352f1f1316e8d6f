package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one flat debit/credit fact against an account, scanned from
// journals, journal entry lines, and payments. The balance aggregator and the
// financial reports consume only this shape.
type LedgerEntry struct {
	AccountID   uuid.UUID
	Date        time.Time
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	BranchID    *uuid.UUID
	Description string
	Reference   string
}

// AccountBalance holds the aggregated totals for one account over a period
type AccountBalance struct {
	AccountID   uuid.UUID       `json:"account_id"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	// Balance is display-signed: debit-positive for Asset/Expense accounts,
	// credit-positive for Liability/Equity/Income accounts.
	Balance decimal.Decimal `json:"balance"`
	// TotalBalance is Balance plus the recursive total of all descendants.
	TotalBalance decimal.Decimal `json:"total_balance"`
	HasActivity  bool            `json:"has_activity"`
}

// BalanceSet is the result of one aggregation pass
type BalanceSet struct {
	byAccount map[uuid.UUID]*AccountBalance
	tree      *AccountTree
}

// Get returns the balance for an account. Accounts with no activity in the
// period come back as zeroed balances, never nil.
func (s *BalanceSet) Get(id uuid.UUID) AccountBalance {
	if b, ok := s.byAccount[id]; ok {
		return *b
	}
	return AccountBalance{
		AccountID:    id,
		DebitTotal:   decimal.Zero,
		CreditTotal:  decimal.Zero,
		Balance:      decimal.Zero,
		TotalBalance: decimal.Zero,
	}
}

// ShouldDisplay reports whether a line-level row for the account belongs in
// report output: it has a non-zero balance or any activity below it.
func (s *BalanceSet) ShouldDisplay(id uuid.UUID) bool {
	b := s.Get(id)
	if !b.TotalBalance.IsZero() || b.HasActivity {
		return true
	}
	for _, child := range s.tree.Descendants(id) {
		if cb := s.Get(child.ID); cb.HasActivity || !cb.Balance.IsZero() {
			return true
		}
	}
	return false
}

// BalanceAggregator computes per-account debit/credit/balance totals for a
// period and rolls descendant balances up into their parents. It is a pure
// function of its inputs: identical arguments over unchanged data yield
// identical output.
type BalanceAggregator struct{}

// NewBalanceAggregator creates a new BalanceAggregator
func NewBalanceAggregator() *BalanceAggregator {
	return &BalanceAggregator{}
}

// ComputeBalances aggregates the entries whose date falls in [dateFrom, dateTo]
// and whose branch matches (all branches when branchID is nil).
func (ba *BalanceAggregator) ComputeBalances(
	tree *AccountTree,
	entries []LedgerEntry,
	dateFrom, dateTo time.Time,
	branchID *uuid.UUID,
) *BalanceSet {
	set := &BalanceSet{
		byAccount: make(map[uuid.UUID]*AccountBalance),
		tree:      tree,
	}

	for _, e := range entries {
		if !inPeriod(e.Date, dateFrom, dateTo) {
			continue
		}
		if branchID != nil && (e.BranchID == nil || *e.BranchID != *branchID) {
			continue
		}
		acct := tree.Get(e.AccountID)
		if acct == nil {
			continue
		}
		b := set.ensure(e.AccountID)
		b.DebitTotal = b.DebitTotal.Add(e.Debit)
		b.CreditTotal = b.CreditTotal.Add(e.Credit)
		b.HasActivity = true
	}

	// Display sign per normal side.
	for id, b := range set.byAccount {
		acct := tree.Get(id)
		if acct.Type.IsDebitNormal() {
			b.Balance = b.DebitTotal.Sub(b.CreditTotal).Round(2)
		} else {
			b.Balance = b.CreditTotal.Sub(b.DebitTotal).Round(2)
		}
	}

	// Rollup: a parent's total is its own balance plus the recursive total of
	// all descendants. Computed bottom-up over the adjacency index.
	for _, root := range tree.Roots() {
		ba.rollup(tree, set, root.ID)
	}

	return set
}

func (ba *BalanceAggregator) rollup(tree *AccountTree, set *BalanceSet, id uuid.UUID) decimal.Decimal {
	b := set.ensure(id)
	total := b.Balance
	for _, child := range tree.ResolveChildren(id) {
		total = total.Add(ba.rollup(tree, set, child.ID))
	}
	b.TotalBalance = total.Round(2)
	return b.TotalBalance
}

func (s *BalanceSet) ensure(id uuid.UUID) *AccountBalance {
	b, ok := s.byAccount[id]
	if !ok {
		b = &AccountBalance{
			AccountID:    id,
			DebitTotal:   decimal.Zero,
			CreditTotal:  decimal.Zero,
			Balance:      decimal.Zero,
			TotalBalance: decimal.Zero,
		}
		s.byAccount[id] = b
	}
	return b
}

func inPeriod(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// CategoryTotal sums the rolled-up totals of the root accounts in one
// top-level category. Sub-accounts are already folded into their mains, so
// only roots are summed to avoid double counting.
func (s *BalanceSet) CategoryTotal(category AccountType) decimal.Decimal {
	total := decimal.Zero
	for _, root := range s.tree.Roots() {
		if root.Type.Category() == category {
			total = total.Add(s.Get(root.ID).TotalBalance)
		}
	}
	return total.Round(2)
}
