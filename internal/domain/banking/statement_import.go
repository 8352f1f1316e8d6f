package banking

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// statementDateLayout is the wire format for statement line dates
const statementDateLayout = "2006-01-02"

// ImportRowError records one malformed statement line. Row errors are
// collected, never fatal to the batch.
type ImportRowError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

func (e ImportRowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// StatementImportResult is the outcome of one CSV import pass
type StatementImportResult struct {
	Transactions []*BankTransaction `json:"-"`
	Imported     int                `json:"imported"`
	Skipped      []ImportRowError   `json:"skipped,omitempty"`
}

// StatementImporter parses pasted CSV bank statements line by line.
// Format: date(YYYY-MM-DD), type(deposit|withdrawal|fee|interest|other),
// amount, description, reference. One BankTransaction per valid line; a
// malformed line fails that line only.
type StatementImporter struct{}

// NewStatementImporter creates a new StatementImporter
func NewStatementImporter() *StatementImporter {
	return &StatementImporter{}
}

// Import reads the statement for one bank account. Partial success: valid
// rows become transactions, bad rows become ImportRowErrors.
func (si *StatementImporter) Import(bankAccountID uuid.UUID, r io.Reader) (*StatementImportResult, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Bank account is required")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length validated per line
	reader.TrimLeadingSpace = true

	result := &StatementImportResult{}
	lineNo := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			result.Skipped = append(result.Skipped, ImportRowError{Line: lineNo, Err: err.Error()})
			continue
		}
		if lineNo == 1 && isHeaderRow(record) {
			continue
		}
		tx, rowErr := si.parseRow(bankAccountID, lineNo, record)
		if rowErr != nil {
			result.Skipped = append(result.Skipped, *rowErr)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
		result.Imported++
	}

	return result, nil
}

func (si *StatementImporter) parseRow(bankAccountID uuid.UUID, lineNo int, record []string) (*BankTransaction, *ImportRowError) {
	if len(record) < 3 {
		return nil, &ImportRowError{Line: lineNo, Err: fmt.Sprintf("expected at least 3 fields, got %d", len(record))}
	}

	date, err := time.Parse(statementDateLayout, strings.TrimSpace(record[0]))
	if err != nil {
		return nil, &ImportRowError{Line: lineNo, Err: fmt.Sprintf("invalid date %q", record[0])}
	}

	txType, ok := parseTransactionType(record[1])
	if !ok {
		return nil, &ImportRowError{Line: lineNo, Err: fmt.Sprintf("invalid type %q", record[1])}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, &ImportRowError{Line: lineNo, Err: fmt.Sprintf("invalid amount %q", record[2])}
	}

	var description, reference string
	if len(record) > 3 {
		description = strings.TrimSpace(record[3])
	}
	if len(record) > 4 {
		reference = strings.TrimSpace(record[4])
	}

	tx, err := NewBankTransaction(bankAccountID, date, txType, amount, description, reference)
	if err != nil {
		return nil, &ImportRowError{Line: lineNo, Err: err.Error()}
	}
	return tx, nil
}

func parseTransactionType(s string) (BankTransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return BankTransactionDeposit, true
	case "withdrawal":
		return BankTransactionWithdrawal, true
	case "fee":
		return BankTransactionFee, true
	case "interest":
		return BankTransactionInterest, true
	case "other":
		return BankTransactionOther, true
	}
	return "", false
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "date" || first == "transaction_date"
}
