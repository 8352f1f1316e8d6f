package banking

import (
	"github.com/shopspring/decimal"
)

// Matching tolerances. Dates are compared in whole days; amount bands are
// fractions of the statement amount.
var (
	exactDateToleranceDays = 3
	looseDateToleranceDays = 7
	highAmountTolerance    = decimal.NewFromFloat(0.01) // within 1%
	mediumAmountTolerance  = decimal.NewFromFloat(0.05) // within 5%
)

// MatchSuggestion pairs a statement line with a candidate payment
type MatchSuggestion struct {
	Transaction *BankTransaction
	Payment     *Payment
	Confidence  MatchConfidence
}

// StatementMatcher suggests pairings between imported bank transactions and
// unreconciled payments. Suggestions are advisory: they set matched_amount
// and match_confidence but never reconcile anything.
type StatementMatcher struct{}

// NewStatementMatcher creates a new StatementMatcher
func NewStatementMatcher() *StatementMatcher {
	return &StatementMatcher{}
}

// Match scans candidates for the best pairing for one transaction.
// Candidates must already be filtered to the transaction's bank account and
// to unreconciled payments; direction is checked here. Returns nil when no
// candidate scores at least MATCH_LOW.
func (m *StatementMatcher) Match(tx *BankTransaction, candidates []*Payment) *MatchSuggestion {
	if tx == nil || tx.Reconciled {
		return nil
	}

	var best *MatchSuggestion
	for _, p := range candidates {
		if p.Reconciled || p.Status.IsTerminal() {
			continue
		}
		if p.BankAccountID != tx.BankAccountID {
			continue
		}
		if tx.Type.IsInflow() != (p.Direction == PaymentDirectionReceived) {
			continue
		}
		confidence, ok := m.grade(tx, p)
		if !ok {
			continue
		}
		if best == nil || rank(confidence) > rank(best.Confidence) {
			best = &MatchSuggestion{Transaction: tx, Payment: p, Confidence: confidence}
			if confidence == MatchExact {
				break
			}
		}
	}
	return best
}

// MatchAll runs Match over a batch of transactions, consuming each payment at
// most once (an exact suggestion removes the payment from later candidates).
func (m *StatementMatcher) MatchAll(txs []*BankTransaction, candidates []*Payment) []MatchSuggestion {
	used := make(map[string]bool)
	var out []MatchSuggestion
	for _, tx := range txs {
		free := make([]*Payment, 0, len(candidates))
		for _, p := range candidates {
			if !used[p.ID.String()] {
				free = append(free, p)
			}
		}
		s := m.Match(tx, free)
		if s == nil {
			continue
		}
		out = append(out, *s)
		if s.Confidence == MatchExact || s.Confidence == MatchHigh {
			used[s.Payment.ID.String()] = true
		}
	}
	return out
}

func (m *StatementMatcher) grade(tx *BankTransaction, p *Payment) (MatchConfidence, bool) {
	days := daysApart(tx, p)
	amountDiff := tx.Amount.Sub(p.Amount).Abs()

	if amountDiff.IsZero() {
		if days <= exactDateToleranceDays {
			return MatchExact, true
		}
		if days <= looseDateToleranceDays {
			return MatchHigh, true
		}
		return MatchMedium, true
	}

	if days > looseDateToleranceDays {
		return "", false
	}

	ratio := amountDiff.Div(tx.Amount)
	switch {
	case ratio.LessThanOrEqual(highAmountTolerance):
		return MatchHigh, true
	case ratio.LessThanOrEqual(mediumAmountTolerance):
		return MatchMedium, true
	case ratio.LessThanOrEqual(mediumAmountTolerance.Mul(decimal.NewFromInt(2))):
		return MatchLow, true
	}
	return "", false
}

func daysApart(tx *BankTransaction, p *Payment) int {
	d := tx.TransactionDate.Sub(p.PaymentDate)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func rank(c MatchConfidence) int {
	switch c {
	case MatchExact:
		return 4
	case MatchHigh:
		return 3
	case MatchMedium:
		return 2
	case MatchLow:
		return 1
	}
	return 0
}
