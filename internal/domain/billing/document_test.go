package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func mustInvoice(t *testing.T, lines []LineItemInput) *Invoice {
	t.Helper()
	due := docDate.AddDate(0, 1, 0)
	inv, err := NewInvoice("INV-000001", "Acme Ltd", docDate, &due)
	require.NoError(t, err)
	require.NoError(t, inv.SetLines(lines))
	return inv
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineItemArithmetic(t *testing.T) {
	line, err := NewLineItem(mustInvoice(t, nil).ID, 1, LineItemInput{
		Description:  "Consulting",
		Quantity:     d("3"),
		UnitPrice:    d("150.00"),
		TaxRate:      d("10"),
		DiscountRate: d("5"),
	})
	require.NoError(t, err)

	assert.True(t, line.Amount.Equal(d("450.00")), "amount = qty * price")
	assert.True(t, line.TaxAmount.Equal(d("45.00")), "tax = amount * rate / 100")
	assert.True(t, line.DiscountAmount.Equal(d("22.50")), "discount = amount * rate / 100")
}

func TestLineItemValidation(t *testing.T) {
	inv := mustInvoice(t, nil)

	_, err := NewLineItem(inv.ID, 1, LineItemInput{Description: "x", Quantity: d("0"), UnitPrice: d("10")})
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))

	_, err = NewLineItem(inv.ID, 1, LineItemInput{Description: "x", Quantity: d("1"), UnitPrice: d("-1")})
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))

	_, err = NewLineItem(inv.ID, 1, LineItemInput{Description: "x", Quantity: d("1"), UnitPrice: d("1"), TaxRate: d("-3")})
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))
}

func TestDocumentTotals(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Widgets", Quantity: d("10"), UnitPrice: d("25.00"), TaxRate: d("8")},
		{Description: "Gadgets", Quantity: d("2"), UnitPrice: d("90.00"), DiscountRate: d("10")},
	})
	require.NoError(t, inv.SetShipping(d("15.00")))

	// subtotal 250 + 180 = 430; tax 20; discount 18; total 430+20-18+15
	assert.True(t, inv.Subtotal.Equal(d("430.00")), "subtotal %s", inv.Subtotal)
	assert.True(t, inv.TaxAmount.Equal(d("20.00")), "tax %s", inv.TaxAmount)
	assert.True(t, inv.DiscountAmount.Equal(d("18.00")), "discount %s", inv.DiscountAmount)
	assert.True(t, inv.TotalAmount.Equal(d("447.00")), "total %s", inv.TotalAmount)
	assert.True(t, inv.BalanceDue.Equal(d("447.00")), "balance due starts at total")
}

func TestRecalculateTotalsIdempotent(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Service", Quantity: d("1.5"), UnitPrice: d("99.99"), TaxRate: d("7.25")},
	})
	require.NoError(t, inv.SetHeaderDiscount(d("5.00")))

	first := inv.TotalAmount
	for i := 0; i < 5; i++ {
		inv.RecalculateTotals()
	}
	assert.True(t, inv.TotalAmount.Equal(first), "recomputing without changes must not drift: %s vs %s", first, inv.TotalAmount)
	assert.True(t, inv.Subtotal.Equal(d("149.99")))
}

func TestApplyPaymentsTotal(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Widgets", Quantity: d("4"), UnitPrice: d("100.00")},
	})

	assert.Equal(t, PayableStatusUnpaid, inv.Status)

	inv.ApplyPaymentsTotal(d("150.00"))
	assert.Equal(t, PayableStatusPartial, inv.Status)
	assert.True(t, inv.BalanceDue.Equal(d("250.00")))

	inv.ApplyPaymentsTotal(d("400.00"))
	assert.Equal(t, PayableStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue.Equal(d("0.00")))

	// a voided payment drops the applied total back down
	inv.ApplyPaymentsTotal(d("0.00"))
	assert.Equal(t, PayableStatusUnpaid, inv.Status)
	assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount))
}

func TestBalanceDueTracksTotalChanges(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Widgets", Quantity: d("1"), UnitPrice: d("100.00")},
	})
	inv.ApplyPaymentsTotal(d("40.00"))

	require.NoError(t, inv.SetLines([]LineItemInput{
		{Description: "Widgets", Quantity: d("2"), UnitPrice: d("100.00")},
	}))
	assert.True(t, inv.BalanceDue.Equal(d("160.00")), "balance due follows the new total")
	assert.Equal(t, PayableStatusPartial, inv.Status)
}

func TestInvoiceOverdue(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Widgets", Quantity: d("1"), UnitPrice: d("50.00")},
	})

	assert.False(t, inv.IsOverdue(docDate.AddDate(0, 0, 10)), "before due date")
	assert.True(t, inv.IsOverdue(docDate.AddDate(0, 2, 0)), "after due date")

	inv.ApplyPaymentsTotal(d("50.00"))
	assert.False(t, inv.IsOverdue(docDate.AddDate(0, 2, 0)), "paid invoices are never overdue")
}

func TestInvoiceDeletionBlockedByPayments(t *testing.T) {
	inv := mustInvoice(t, []LineItemInput{
		{Description: "Widgets", Quantity: d("1"), UnitPrice: d("50.00")},
	})
	require.NoError(t, inv.EnsureDeletable())

	inv.ApplyPaymentsTotal(d("10.00"))
	err := inv.EnsureDeletable()
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeInvalidState))
}

func TestBillDueDateValidation(t *testing.T) {
	bad := docDate.AddDate(0, 0, -1)
	_, err := NewBill("BILL-000001", "Supplies Inc", docDate, &bad)
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))

	_, err = NewBill("BILL-000001", "", docDate, nil)
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))
}
