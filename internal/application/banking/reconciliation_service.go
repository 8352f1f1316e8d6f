package banking

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/domain/banking"
	"github.com/smbledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReconciliationService drives the statement import, matching, and
// reconciliation session lifecycle for bank accounts.
type ReconciliationService struct {
	paymentRepo banking.PaymentRepository
	txRepo      banking.BankTransactionRepository
	sessionRepo banking.ReconciliationSessionRepository
	reconRepo   banking.BankReconciliationRepository
	accountRepo accounting.AccountRepository
	journalRepo accounting.JournalRepository
	txManager   shared.TransactionManager
	importer    *banking.StatementImporter
	matcher     *banking.StatementMatcher
	poster      *accounting.LedgerPoster
	logger      *zap.Logger
}

// ReconciliationServiceOption is a functional option for configuring ReconciliationService
type ReconciliationServiceOption func(*ReconciliationService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ReconciliationServiceOption {
	return func(s *ReconciliationService) {
		s.logger = logger
	}
}

// WithTransactionManager sets the store transaction runner used for
// multi-repository writes such as the session commit
func WithTransactionManager(tm shared.TransactionManager) ReconciliationServiceOption {
	return func(s *ReconciliationService) {
		s.txManager = tm
	}
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	paymentRepo banking.PaymentRepository,
	txRepo banking.BankTransactionRepository,
	sessionRepo banking.ReconciliationSessionRepository,
	reconRepo banking.BankReconciliationRepository,
	accountRepo accounting.AccountRepository,
	journalRepo accounting.JournalRepository,
	opts ...ReconciliationServiceOption,
) *ReconciliationService {
	s := &ReconciliationService{
		paymentRepo: paymentRepo,
		txRepo:      txRepo,
		sessionRepo: sessionRepo,
		reconRepo:   reconRepo,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		txManager:   shared.NopTransactionManager{},
		importer:    banking.NewStatementImporter(),
		matcher:     banking.NewStatementMatcher(),
		poster:      accounting.NewLedgerPoster(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Payments =====================

// CreatePaymentRequest is the input for recording a payment
type CreatePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate   time.Time       `json:"payment_date" binding:"required"`
	Method        string          `json:"method" binding:"required"`
	Direction     string          `json:"direction" binding:"required"`
	BankAccountID uuid.UUID       `json:"bank_account_id" binding:"required"`
	DocumentKind  string          `json:"document_kind"`
	DocumentID    *uuid.UUID      `json:"document_id"`
	Reference     string          `json:"reference"`
	Memo          string          `json:"memo"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"method"`
	Direction     string          `json:"direction"`
	Status        string          `json:"status"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	DocumentKind  *string         `json:"document_kind,omitempty"`
	DocumentID    *uuid.UUID      `json:"document_id,omitempty"`
	IsReconciled  bool            `json:"is_reconciled"`
	ClearedDate   *time.Time      `json:"cleared_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPaymentResponse(p *banking.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:            p.ID,
		Number:        p.Number,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Method:        string(p.PaymentMethod),
		Direction:     string(p.Direction),
		Status:        string(p.Status),
		BankAccountID: p.BankAccountID,
		DocumentID:    p.DocumentID,
		IsReconciled:  p.Reconciled,
		ClearedDate:   p.ClearedDate,
		CreatedAt:     p.CreatedAt,
	}
	if p.DocumentKind != nil {
		kind := string(*p.DocumentKind)
		resp.DocumentKind = &kind
	}
	return resp
}

// CreatePayment records a payment, numbering it from the PAY sequence and
// optionally linking the settled document.
func (s *ReconciliationService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	bankAccount, err := s.findBankAccount(ctx, req.BankAccountID)
	if err != nil {
		return nil, err
	}

	number, err := s.paymentRepo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}
	payment, err := banking.NewPayment(number, req.Amount, req.PaymentDate,
		banking.PaymentMethod(req.Method), banking.PaymentDirection(req.Direction), bankAccount.ID)
	if err != nil {
		return nil, err
	}
	payment.Reference = req.Reference
	payment.Memo = req.Memo
	// Recording a payment means the money already moved; it counts toward
	// document settlement immediately.
	if err := payment.Complete(); err != nil {
		return nil, err
	}

	if req.DocumentID != nil {
		if err := payment.AttachDocument(banking.DocumentKind(req.DocumentKind), *req.DocumentID); err != nil {
			return nil, err
		}
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.String("number", payment.Number),
		zap.String("direction", string(payment.Direction)),
		zap.String("amount", payment.Amount.StringFixed(2)))
	return toPaymentResponse(payment), nil
}

// VoidPayment voids a pending or completed payment. Reconciled payments
// refuse the void in the domain layer.
func (s *ReconciliationService) VoidPayment(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.Void(now, reason); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// ===================== Statement import & matching =====================

// ImportResponse reports the outcome of one statement file import
type ImportResponse struct {
	Imported  int               `json:"imported"`
	Skipped   int               `json:"skipped"`
	RowErrors []ImportRowDetail `json:"row_errors,omitempty"`
}

// ImportRowDetail is one rejected statement row
type ImportRowDetail struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportStatement parses a CSV bank statement and stores the valid rows.
// Malformed rows are reported per line; they never abort the import.
func (s *ReconciliationService) ImportStatement(ctx context.Context, bankAccountID uuid.UUID, r io.Reader) (*ImportResponse, error) {
	if _, err := s.findBankAccount(ctx, bankAccountID); err != nil {
		return nil, err
	}

	result, err := s.importer.Import(bankAccountID, r)
	if err != nil {
		return nil, err
	}
	if len(result.Transactions) > 0 {
		if err := s.txRepo.SaveAll(ctx, result.Transactions); err != nil {
			return nil, err
		}
	}

	resp := &ImportResponse{Imported: result.Imported, Skipped: len(result.Skipped)}
	for _, rowErr := range result.Skipped {
		resp.RowErrors = append(resp.RowErrors, ImportRowDetail{Line: rowErr.Line, Message: rowErr.Err})
	}
	s.logger.Info("statement imported",
		zap.Stringer("bank_account", bankAccountID),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// MatchSuggestionResponse is one advisory statement-to-payment match
type MatchSuggestionResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Confidence    string          `json:"confidence"`
}

// SuggestMatches pairs unreconciled statement lines with unreconciled
// payments and persists the suggestions on the transactions. Matches are
// advisory; reconciliation still marks items explicitly.
func (s *ReconciliationService) SuggestMatches(ctx context.Context, bankAccountID uuid.UUID) ([]MatchSuggestionResponse, error) {
	txs, err := s.txRepo.FindUnreconciled(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindUnreconciled(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}

	txPtrs := make([]*banking.BankTransaction, len(txs))
	for i := range txs {
		txPtrs[i] = &txs[i]
	}
	payPtrs := make([]*banking.Payment, len(payments))
	for i := range payments {
		payPtrs[i] = &payments[i]
	}

	suggestions := s.matcher.MatchAll(txPtrs, payPtrs)
	responses := make([]MatchSuggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		if err := sg.Transaction.SuggestMatch(sg.Payment.ID, sg.Payment.Amount, sg.Confidence); err != nil {
			continue
		}
		if err := s.txRepo.Save(ctx, sg.Transaction); err != nil {
			return nil, err
		}
		responses = append(responses, MatchSuggestionResponse{
			TransactionID: sg.Transaction.ID,
			PaymentID:     sg.Payment.ID,
			PaymentNumber: sg.Payment.Number,
			Amount:        sg.Payment.Amount,
			Confidence:    string(sg.Confidence),
		})
	}
	return responses, nil
}

// ===================== Session lifecycle =====================

// BeginSessionRequest is the input for opening a reconciliation session
type BeginSessionRequest struct {
	BankAccountID          uuid.UUID       `json:"bank_account_id" binding:"required"`
	StatementDate          time.Time       `json:"statement_date" binding:"required"`
	EndingBalance          decimal.Decimal `json:"ending_balance"`
	ServiceCharge          decimal.Decimal `json:"service_charge"`
	ServiceChargeAccountID *uuid.UUID      `json:"service_charge_account_id"`
	InterestEarned         decimal.Decimal `json:"interest_earned"`
	InterestAccountID      *uuid.UUID      `json:"interest_account_id"`
}

// SessionResponse represents a reconciliation session in API responses
type SessionResponse struct {
	ID               uuid.UUID       `json:"id"`
	BankAccountID    uuid.UUID       `json:"bank_account_id"`
	StatementDate    time.Time       `json:"statement_date"`
	Status           string          `json:"status"`
	BeginningBalance decimal.Decimal `json:"beginning_balance"`
	EndingBalance    decimal.Decimal `json:"ending_balance"`
	ServiceCharge    decimal.Decimal `json:"service_charge"`
	InterestEarned   decimal.Decimal `json:"interest_earned"`
	ClearedBalance   decimal.Decimal `json:"cleared_balance"`
	Difference       decimal.Decimal `json:"difference"`
	MarkedCount      int             `json:"marked_count"`
}

func toSessionResponse(sess *banking.ReconciliationSession) *SessionResponse {
	return &SessionResponse{
		ID:               sess.ID,
		BankAccountID:    sess.BankAccountID,
		StatementDate:    sess.StatementDate,
		Status:           string(sess.Status),
		BeginningBalance: sess.BeginningBalance,
		EndingBalance:    sess.EndingBalance,
		ServiceCharge:    sess.ServiceCharge,
		InterestEarned:   sess.InterestEarned,
		ClearedBalance:   sess.ClearedBalance(),
		Difference:       sess.Difference(),
		MarkedCount:      len(sess.Marks),
	}
}

// BeginSession opens a reconciliation session for a bank account. At most
// one session per account may be open; the beginning balance carries forward
// from the last committed reconciliation, or the account's opening balance
// when there is none.
func (s *ReconciliationService) BeginSession(ctx context.Context, req BeginSessionRequest) (*SessionResponse, error) {
	bankAccount, err := s.findBankAccount(ctx, req.BankAccountID)
	if err != nil {
		return nil, err
	}

	open, err := s.sessionRepo.FindOpenByBankAccount(ctx, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, shared.NewDomainError(shared.ErrCodeSessionAlreadyOpen,
			"A reconciliation session is already open for this bank account")
	}

	beginning := bankAccount.OpeningBalance
	if last, err := s.reconRepo.FindLatestByBankAccount(ctx, req.BankAccountID); err != nil {
		return nil, err
	} else if last != nil {
		beginning = last.EndingBalance
	}

	session, err := banking.NewReconciliationSession(req.BankAccountID, req.StatementDate,
		beginning, req.EndingBalance, req.ServiceCharge, req.InterestEarned)
	if err != nil {
		return nil, err
	}
	session.ServiceChargeAccountID = req.ServiceChargeAccountID
	session.InterestAccountID = req.InterestAccountID

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("reconciliation session opened",
		zap.Stringer("bank_account", req.BankAccountID),
		zap.String("beginning", beginning.StringFixed(2)),
		zap.String("ending", req.EndingBalance.StringFixed(2)))
	return toSessionResponse(session), nil
}

// MarkItemRequest toggles one statement line or payment in a session
type MarkItemRequest struct {
	Kind   string    `json:"kind" binding:"required"`
	ItemID uuid.UUID `json:"item_id" binding:"required"`
}

// MarkItem marks a transaction or payment as cleared within the session
func (s *ReconciliationService) MarkItem(ctx context.Context, sessionID uuid.UUID, req MarkItemRequest) (*SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch banking.MarkKind(req.Kind) {
	case banking.MarkKindBankTransaction:
		tx, err := s.txRepo.FindByID(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if tx == nil {
			return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Bank transaction not found")
		}
		if err := session.MarkTransaction(tx); err != nil {
			return nil, err
		}
	case banking.MarkKindPayment:
		payment, err := s.findPayment(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if err := session.MarkPayment(payment); err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Unknown mark kind: "+req.Kind)
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// UnmarkItem removes a mark from the session
func (s *ReconciliationService) UnmarkItem(ctx context.Context, sessionID uuid.UUID, req MarkItemRequest) (*SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Unmark(banking.MarkKind(req.Kind), req.ItemID); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// GetSession returns the live session with its running cleared balance and
// difference.
func (s *ReconciliationService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// CommitResponse reports a committed reconciliation
type CommitResponse struct {
	ReconciliationID uuid.UUID       `json:"reconciliation_id"`
	ClearedBalance   decimal.Decimal `json:"cleared_balance"`
	Difference       decimal.Decimal `json:"difference"`
	MarkedItems      int             `json:"marked_items"`
}

// CommitSession commits the session: every marked item is stamped
// reconciled, the immutable reconciliation record is stored, and any service
// charge or interest is posted to the ledger. The whole commit runs in one
// store transaction; a failure rolls back every mark, posting, and the
// record. The difference is recorded as-is; a non-zero difference does not
// block the commit.
func (s *ReconciliationService) CommitSession(ctx context.Context, sessionID uuid.UUID, reconciledBy *uuid.UUID, now time.Time) (*CommitResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	marks := make([]banking.SessionMark, len(session.Marks))
	copy(marks, session.Marks)

	rec, err := session.Commit(now, reconciledBy)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		for _, mark := range marks {
			switch mark.Kind {
			case banking.MarkKindBankTransaction:
				tx, err := s.txRepo.FindByID(ctx, mark.ItemID)
				if err != nil {
					return err
				}
				if tx == nil {
					return shared.NewDomainError(shared.ErrCodePostingFailed, "Marked transaction no longer exists")
				}
				if err := tx.MarkReconciled(now); err != nil {
					return err
				}
				if err := s.txRepo.Save(ctx, tx); err != nil {
					return err
				}
			case banking.MarkKindPayment:
				payment, err := s.findPayment(ctx, mark.ItemID)
				if err != nil {
					return err
				}
				if err := payment.MarkReconciled(now, reconciledBy); err != nil {
					return err
				}
				if err := s.paymentRepo.Save(ctx, payment); err != nil {
					return err
				}
			}
		}

		if err := s.postSessionCharges(ctx, session, now); err != nil {
			return err
		}
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return err
		}
		return s.reconRepo.Save(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reconciliation committed",
		zap.Stringer("bank_account", session.BankAccountID),
		zap.String("difference", rec.Difference.StringFixed(2)),
		zap.Int("marked_items", len(marks)))
	return &CommitResponse{
		ReconciliationID: rec.ID,
		ClearedBalance:   rec.ClearedBalance,
		Difference:       rec.Difference,
		MarkedItems:      len(marks),
	}, nil
}

// postSessionCharges writes the service-charge and interest journals the
// statement revealed. Service charge debits expense, credits the bank;
// interest debits the bank, credits income.
func (s *ReconciliationService) postSessionCharges(ctx context.Context, session *banking.ReconciliationSession, now time.Time) error {
	if session.ServiceCharge.IsZero() && session.InterestEarned.IsZero() {
		return nil
	}
	bankAccount, err := s.findBankAccount(ctx, session.BankAccountID)
	if err != nil {
		return err
	}

	if session.ServiceCharge.GreaterThan(decimal.Zero) && session.ServiceChargeAccountID != nil {
		expense, err := s.findAccount(ctx, *session.ServiceChargeAccountID)
		if err != nil {
			return err
		}
		journal, err := s.poster.PostTwoSided(expense, bankAccount, session.ServiceCharge, now)
		if err != nil {
			return err
		}
		journal.Description = "Bank service charge"
		journal.WithSource(accounting.SourceReconciliation, session.ID)
		if err := s.journalRepo.SaveWithAccounts(ctx, journal, []*accounting.Account{expense, bankAccount}); err != nil {
			return err
		}
	}
	if session.InterestEarned.GreaterThan(decimal.Zero) && session.InterestAccountID != nil {
		income, err := s.findAccount(ctx, *session.InterestAccountID)
		if err != nil {
			return err
		}
		journal, err := s.poster.PostTwoSided(bankAccount, income, session.InterestEarned, now)
		if err != nil {
			return err
		}
		journal.Description = "Interest earned"
		journal.WithSource(accounting.SourceReconciliation, session.ID)
		if err := s.journalRepo.SaveWithAccounts(ctx, journal, []*accounting.Account{bankAccount, income}); err != nil {
			return err
		}
	}
	return nil
}

// AbandonSession discards the session without touching any marked item
func (s *ReconciliationService) AbandonSession(ctx context.Context, sessionID uuid.UUID, now time.Time) (*SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Abandon(now); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("reconciliation session abandoned",
		zap.Stringer("bank_account", session.BankAccountID))
	return toSessionResponse(session), nil
}

// ===================== helpers =====================

func (s *ReconciliationService) findPayment(ctx context.Context, id uuid.UUID) (*banking.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Payment not found")
	}
	return payment, nil
}

func (s *ReconciliationService) findSession(ctx context.Context, id uuid.UUID) (*banking.ReconciliationSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Reconciliation session not found")
	}
	return session, nil
}

func (s *ReconciliationService) findAccount(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Account not found")
	}
	return account, nil
}

func (s *ReconciliationService) findBankAccount(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	account, err := s.findAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsBankAccount() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Account is not a bank account")
	}
	return account, nil
}
