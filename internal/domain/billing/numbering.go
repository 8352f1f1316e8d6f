package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberScheme describes a document numbering sequence: a fixed prefix and a
// zero-padded sequential suffix, e.g. INV-000042.
type NumberScheme struct {
	Prefix string
	Width  int
}

var (
	InvoiceNumbers        = NumberScheme{Prefix: "INV", Width: 6}
	BillNumbers           = NumberScheme{Prefix: "BILL", Width: 6}
	PaymentNumbers        = NumberScheme{Prefix: "PAY", Width: 6}
	PurchaseOrderNumbers  = NumberScheme{Prefix: "PO", Width: 6}
	SupplierNumbers       = NumberScheme{Prefix: "SUP", Width: 4}
	GeneralJournalNumbers = NumberScheme{Prefix: "JE", Width: 6}
	QuotationNumbers      = NumberScheme{Prefix: "QT", Width: 6}
	SalesOrderNumbers     = NumberScheme{Prefix: "SO", Width: 6}
)

// Format renders the nth number in the sequence.
func (s NumberScheme) Format(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.Prefix, s.Width, n)
}

// Next returns the number following the given one. An empty or foreign
// current number starts the sequence at 1, so a fresh table begins at
// INV-000001 rather than failing.
func (s NumberScheme) Next(current string) string {
	n, ok := s.Parse(current)
	if !ok {
		return s.Format(1)
	}
	return s.Format(n + 1)
}

// Parse extracts the sequence value from a formatted number.
func (s NumberScheme) Parse(number string) (int64, bool) {
	rest, found := strings.CutPrefix(number, s.Prefix+"-")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
