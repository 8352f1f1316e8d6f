package banking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/domain/banking"
	"github.com/smbledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stmtDate = time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	now      = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ===================== in-memory fakes =====================

type fakePaymentRepo struct {
	payments map[uuid.UUID]*banking.Payment
	next     int64
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*banking.Payment)}
}

func (f *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.Payment, error) {
	return f.payments[id], nil
}

func (f *fakePaymentRepo) FindByNumber(_ context.Context, number string) (*banking.Payment, error) {
	for _, p := range f.payments {
		if p.Number == number {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]banking.Payment, error) {
	out := make([]banking.Payment, 0)
	for _, id := range ids {
		if p, ok := f.payments[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindByDocument(_ context.Context, kind banking.DocumentKind, documentID uuid.UUID) ([]banking.Payment, error) {
	out := make([]banking.Payment, 0)
	for _, p := range f.payments {
		if p.DocumentKind != nil && *p.DocumentKind == kind && p.DocumentID != nil && *p.DocumentID == documentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindUnreconciled(_ context.Context, bankAccountID uuid.UUID) ([]banking.Payment, error) {
	out := make([]banking.Payment, 0)
	for _, p := range f.payments {
		if p.BankAccountID == bankAccountID && !p.Reconciled {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindByDateRange(_ context.Context, _, _ time.Time) ([]banking.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) Save(_ context.Context, p *banking.Payment) error {
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.payments, id)
	return nil
}

func (f *fakePaymentRepo) NextNumber(_ context.Context) (string, error) {
	f.next++
	return fmt.Sprintf("PAY-%06d", f.next), nil
}

type fakeTxRepo struct {
	txs map[uuid.UUID]*banking.BankTransaction
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{txs: make(map[uuid.UUID]*banking.BankTransaction)}
}

func (f *fakeTxRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.BankTransaction, error) {
	return f.txs[id], nil
}

func (f *fakeTxRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]banking.BankTransaction, error) {
	out := make([]banking.BankTransaction, 0)
	for _, id := range ids {
		if tx, ok := f.txs[id]; ok {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (f *fakeTxRepo) FindUnreconciled(_ context.Context, bankAccountID uuid.UUID) ([]banking.BankTransaction, error) {
	out := make([]banking.BankTransaction, 0)
	for _, tx := range f.txs {
		if tx.BankAccountID == bankAccountID && !tx.Reconciled {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (f *fakeTxRepo) FindByBankAccount(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]banking.BankTransaction, error) {
	return nil, nil
}

func (f *fakeTxRepo) Save(_ context.Context, tx *banking.BankTransaction) error {
	f.txs[tx.ID] = tx
	return nil
}

func (f *fakeTxRepo) SaveAll(_ context.Context, txs []*banking.BankTransaction) error {
	for _, tx := range txs {
		f.txs[tx.ID] = tx
	}
	return nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*banking.ReconciliationSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*banking.ReconciliationSession)}
}

func (f *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.ReconciliationSession, error) {
	return f.sessions[id], nil
}

func (f *fakeSessionRepo) FindOpenByBankAccount(_ context.Context, bankAccountID uuid.UUID) (*banking.ReconciliationSession, error) {
	for _, s := range f.sessions {
		if s.BankAccountID == bankAccountID && s.IsOpen() {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) Save(_ context.Context, s *banking.ReconciliationSession) error {
	f.sessions[s.ID] = s
	return nil
}

type fakeReconRepo struct {
	recs []*banking.BankReconciliation
}

func (f *fakeReconRepo) FindByID(_ context.Context, id uuid.UUID) (*banking.BankReconciliation, error) {
	for _, r := range f.recs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReconRepo) FindLatestByBankAccount(_ context.Context, bankAccountID uuid.UUID) (*banking.BankReconciliation, error) {
	var latest *banking.BankReconciliation
	for _, r := range f.recs {
		if r.BankAccountID != bankAccountID {
			continue
		}
		if latest == nil || r.StatementDate.After(latest.StatementDate) {
			latest = r
		}
	}
	return latest, nil
}

func (f *fakeReconRepo) FindByBankAccount(_ context.Context, bankAccountID uuid.UUID) ([]banking.BankReconciliation, error) {
	out := make([]banking.BankReconciliation, 0)
	for _, r := range f.recs {
		if r.BankAccountID == bankAccountID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReconRepo) Save(_ context.Context, rec *banking.BankReconciliation) error {
	f.recs = append(f.recs, rec)
	return nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*accounting.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*accounting.Account)}
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) FindByCode(_ context.Context, code string) (*accounting.Account, error) {
	for _, a := range f.accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindAll(_ context.Context) ([]accounting.Account, error) {
	out := make([]accounting.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccountRepo) FindByType(_ context.Context, _ accounting.AccountType) ([]accounting.Account, error) {
	return nil, nil
}

func (f *fakeAccountRepo) Save(_ context.Context, a *accounting.Account) error {
	f.accounts[a.ID] = a
	return nil
}

func (f *fakeAccountRepo) SaveAll(_ context.Context, accounts []*accounting.Account) error {
	for _, a := range accounts {
		f.accounts[a.ID] = a
	}
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.accounts, id)
	return nil
}

type fakeJournalRepo struct {
	journals []*accounting.Journal
}

func (f *fakeJournalRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Journal, error) {
	for _, j := range f.journals {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJournalRepo) FindByAccount(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]accounting.Journal, error) {
	return nil, nil
}

func (f *fakeJournalRepo) FindBySource(_ context.Context, sourceType accounting.SourceDocumentType, sourceID uuid.UUID) ([]accounting.Journal, error) {
	out := make([]accounting.Journal, 0)
	for _, j := range f.journals {
		if j.SourceType == sourceType && j.SourceID != nil && *j.SourceID == sourceID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (f *fakeJournalRepo) SaveWithAccounts(_ context.Context, journal *accounting.Journal, _ []*accounting.Account) error {
	f.journals = append(f.journals, journal)
	return nil
}

// ===================== fixtures =====================

type fixture struct {
	svc         *ReconciliationService
	payments    *fakePaymentRepo
	txs         *fakeTxRepo
	sessions    *fakeSessionRepo
	recons      *fakeReconRepo
	accounts    *fakeAccountRepo
	journals    *fakeJournalRepo
	bankAccount *accounting.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	bank, err := accounting.NewAccount("1000", "Checking", accounting.AccountTypeBank, d("1000.00"))
	require.NoError(t, err)
	accounts.accounts[bank.ID] = bank

	payments := newFakePaymentRepo()
	txs := newFakeTxRepo()
	sessions := newFakeSessionRepo()
	recons := &fakeReconRepo{}
	journals := &fakeJournalRepo{}

	return &fixture{
		svc:         NewReconciliationService(payments, txs, sessions, recons, accounts, journals),
		payments:    payments,
		txs:         txs,
		sessions:    sessions,
		recons:      recons,
		accounts:    accounts,
		journals:    journals,
		bankAccount: bank,
	}
}

func (fx *fixture) addPayment(t *testing.T, amount string, direction banking.PaymentDirection) *banking.Payment {
	t.Helper()
	number, err := fx.payments.NextNumber(context.Background())
	require.NoError(t, err)
	p, err := banking.NewPayment(number, d(amount), stmtDate.AddDate(0, 0, -5),
		banking.PaymentMethodBankTransfer, direction, fx.bankAccount.ID)
	require.NoError(t, err)
	require.NoError(t, fx.payments.Save(context.Background(), p))
	return p
}

// ===================== tests =====================

func TestBeginSessionMutualExclusion(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	req := BeginSessionRequest{
		BankAccountID: fx.bankAccount.ID,
		StatementDate: stmtDate,
		EndingBalance: d("1147.00"),
	}
	first, err := fx.svc.BeginSession(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", first.Status)

	_, err = fx.svc.BeginSession(ctx, req)
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeSessionAlreadyOpen))

	// abandoning frees the account for a new session
	_, err = fx.svc.AbandonSession(ctx, first.ID, now)
	require.NoError(t, err)
	_, err = fx.svc.BeginSession(ctx, req)
	assert.NoError(t, err)
}

func TestBeginSessionBeginningBalanceCarryForward(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, err := fx.svc.BeginSession(ctx, BeginSessionRequest{
		BankAccountID: fx.bankAccount.ID,
		StatementDate: stmtDate,
		EndingBalance: d("1200.00"),
	})
	require.NoError(t, err)
	assert.True(t, first.BeginningBalance.Equal(d("1000.00")), "first session starts at the account opening balance")

	_, err = fx.svc.CommitSession(ctx, first.ID, nil, now)
	require.NoError(t, err)

	second, err := fx.svc.BeginSession(ctx, BeginSessionRequest{
		BankAccountID: fx.bankAccount.ID,
		StatementDate: stmtDate.AddDate(0, 1, 0),
		EndingBalance: d("1500.00"),
	})
	require.NoError(t, err)
	assert.True(t, second.BeginningBalance.Equal(d("1200.00")),
		"beginning balance carries forward from the last committed reconciliation")
}

func TestCommitMarksItemsAndStoresDifference(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	deposit := fx.addPayment(t, "200.00", banking.PaymentDirectionReceived)
	withdrawal := fx.addPayment(t, "50.00", banking.PaymentDirectionPaid)

	sess, err := fx.svc.BeginSession(ctx, BeginSessionRequest{
		BankAccountID:  fx.bankAccount.ID,
		StatementDate:  stmtDate,
		EndingBalance:  d("1147.00"),
		ServiceCharge:  d("5.00"),
		InterestEarned: d("2.00"),
	})
	require.NoError(t, err)

	_, err = fx.svc.MarkItem(ctx, sess.ID, MarkItemRequest{Kind: "PAYMENT", ItemID: deposit.ID})
	require.NoError(t, err)
	summary, err := fx.svc.MarkItem(ctx, sess.ID, MarkItemRequest{Kind: "PAYMENT", ItemID: withdrawal.ID})
	require.NoError(t, err)

	// 1000 + 200 - 50 - 5 + 2 = 1147
	assert.True(t, summary.ClearedBalance.Equal(d("1147.00")), "cleared %s", summary.ClearedBalance)
	assert.True(t, summary.Difference.IsZero(), "difference %s", summary.Difference)

	commit, err := fx.svc.CommitSession(ctx, sess.ID, nil, now)
	require.NoError(t, err)
	assert.True(t, commit.Difference.IsZero())
	assert.Equal(t, 2, commit.MarkedItems)

	assert.True(t, fx.payments.payments[deposit.ID].Reconciled)
	assert.True(t, fx.payments.payments[withdrawal.ID].Reconciled)
}

func TestCommitStoresNonZeroDifferenceVerbatim(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	sess, err := fx.svc.BeginSession(ctx, BeginSessionRequest{
		BankAccountID: fx.bankAccount.ID,
		StatementDate: stmtDate,
		EndingBalance: d("1033.37"),
	})
	require.NoError(t, err)

	commit, err := fx.svc.CommitSession(ctx, sess.ID, nil, now)
	require.NoError(t, err)
	assert.True(t, commit.Difference.Equal(d("33.37")), "difference stored bit-for-bit, got %s", commit.Difference)
	require.Len(t, fx.recons.recs, 1)
	assert.True(t, fx.recons.recs[0].Difference.Equal(d("33.37")))
}

func TestCommitPostsServiceChargeAndInterest(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	feeAccount, err := accounting.NewAccount("5100", "Bank Fees", accounting.AccountTypeExpense, decimal.Zero)
	require.NoError(t, err)
	interestAccount, err := accounting.NewAccount("4200", "Interest Income", accounting.AccountTypeIncome, decimal.Zero)
	require.NoError(t, err)
	fx.accounts.accounts[feeAccount.ID] = feeAccount
	fx.accounts.accounts[interestAccount.ID] = interestAccount

	sess, err := fx.svc.BeginSession(ctx, BeginSessionRequest{
		BankAccountID:          fx.bankAccount.ID,
		StatementDate:          stmtDate,
		EndingBalance:          d("997.00"),
		ServiceCharge:          d("5.00"),
		ServiceChargeAccountID: &feeAccount.ID,
		InterestEarned:         d("2.00"),
		InterestAccountID:      &interestAccount.ID,
	})
	require.NoError(t, err)

	_, err = fx.svc.CommitSession(ctx, sess.ID, nil, now)
	require.NoError(t, err)

	require.Len(t, fx.journals.journals, 2)
	fee := fx.journals.journals[0]
	assert.Equal(t, feeAccount.ID, fee.DebitAccountID)
	assert.Equal(t, fx.bankAccount.ID, fee.CreditAccountID)
	assert.True(t, fee.Amount.Equal(d("5.00")))

	interest := fx.journals.journals[1]
	assert.Equal(t, fx.bankAccount.ID, interest.DebitAccountID)
	assert.Equal(t, interestAccount.ID, interest.CreditAccountID)
	assert.True(t, interest.Amount.Equal(d("2.00")))
}

func TestImportStatementCollectsRowErrors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"date,type,amount,description,reference",
		"2026-07-03,deposit,500.00,Customer payment,REF-1",
		"not-a-date,deposit,oops,Broken row,REF-2",
		"2026-07-10,withdrawal,120.00,Rent,REF-3",
	}, "\n")

	resp, err := fx.svc.ImportStatement(ctx, fx.bankAccount.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, resp.RowErrors, 1)
	assert.Equal(t, 3, resp.RowErrors[0].Line, "header counts as line 1")
	assert.Len(t, fx.txs.txs, 2)
}

func TestImportStatementRejectsNonBankAccount(t *testing.T) {
	fx := newFixture(t)
	expense, err := accounting.NewAccount("5000", "Rent", accounting.AccountTypeExpense, decimal.Zero)
	require.NoError(t, err)
	fx.accounts.accounts[expense.ID] = expense

	_, err = fx.svc.ImportStatement(context.Background(), expense.ID, strings.NewReader(""))
	assert.True(t, shared.IsDomainError(err, shared.ErrCodeValidation))
}

func TestSuggestMatchesArePersistedAdvisory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	payment := fx.addPayment(t, "250.00", banking.PaymentDirectionReceived)
	tx, err := banking.NewBankTransaction(fx.bankAccount.ID, stmtDate.AddDate(0, 0, -5),
		banking.BankTransactionDeposit, d("250.00"), "Customer deposit", "REF-9")
	require.NoError(t, err)
	require.NoError(t, fx.txs.Save(ctx, tx))

	suggestions, err := fx.svc.SuggestMatches(ctx, fx.bankAccount.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, payment.ID, suggestions[0].PaymentID)
	assert.Equal(t, string(banking.MatchExact), suggestions[0].Confidence)

	stored := fx.txs.txs[suggestions[0].TransactionID]
	assert.False(t, stored.Reconciled, "suggestions never reconcile")
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, payment.ID, *stored.PaymentID)
}
