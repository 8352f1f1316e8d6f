package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/domain/shared"
	"github.com/smbledger/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix  = "report:"
	defaultCacheTTL = 5 * time.Minute
	// balanceTolerance is the rounding slack allowed before a balance sheet
	// is reported out of balance.
	balanceTolerance = 0.01
)

// ReportService renders the financial reports. Every report is a pure read
// over the chart of accounts and the flat ledger entries; results are cached
// until the next ledger write invalidates them.
type ReportService struct {
	accountRepo accounting.AccountRepository
	entryReader accounting.LedgerEntryReader
	aggregator  *accounting.BalanceAggregator
	cache       cache.ReportCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// ReportServiceOption is a functional option for configuring ReportService
type ReportServiceOption func(*ReportService)

// WithCache sets the report cache
func WithCache(c cache.ReportCache) ReportServiceOption {
	return func(s *ReportService) {
		s.cache = c
	}
}

// WithCacheTTL overrides the default report cache TTL
func WithCacheTTL(ttl time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		s.cacheTTL = ttl
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) ReportServiceOption {
	return func(s *ReportService) {
		s.logger = logger
	}
}

// NewReportService creates a new ReportService
func NewReportService(
	accountRepo accounting.AccountRepository,
	entryReader accounting.LedgerEntryReader,
	opts ...ReportServiceOption,
) *ReportService {
	s := &ReportService{
		accountRepo: accountRepo,
		entryReader: entryReader,
		aggregator:  accounting.NewBalanceAggregator(),
		cacheTTL:    defaultCacheTTL,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InvalidateCache drops every cached report. Call it after any posting.
func (s *ReportService) InvalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, cacheKeyPrefix)
	}
}

// ===================== Balance Sheet =====================

// ReportRow is one account line in a report section
type ReportRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	SubRows   []ReportRow     `json:"sub_rows,omitempty"`
}

// ReportSection groups the rows of one top-level category
type ReportSection struct {
	Title string          `json:"title"`
	Rows  []ReportRow     `json:"rows"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheetReport is the assets/liabilities/equity statement as of the
// period end. Net profit for the period is folded into the equity section.
type BalanceSheetReport struct {
	DateFrom    time.Time       `json:"date_from"`
	DateTo      time.Time       `json:"date_to"`
	Assets      ReportSection   `json:"assets"`
	Liabilities ReportSection   `json:"liabilities"`
	Equity      ReportSection   `json:"equity"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	// Equation is Assets - (Liabilities + Equity); Balanced when its
	// magnitude is under one cent.
	Equation decimal.Decimal `json:"balance_sheet_equation"`
	Balanced bool            `json:"balanced"`
}

// BalanceSheet builds the balance sheet for a period
func (s *ReportService) BalanceSheet(ctx context.Context, dateFrom, dateTo time.Time, branchID *uuid.UUID) (*BalanceSheetReport, error) {
	key := s.cacheKey("balance_sheet", dateFrom, dateTo, branchID)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var report BalanceSheetReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	tree, set, err := s.aggregate(ctx, dateFrom, dateTo, branchID)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheetReport{
		DateFrom:    dateFrom,
		DateTo:      dateTo,
		Assets:      s.buildSection(tree, set, accounting.AccountTypeAsset, "Assets", false),
		Liabilities: s.buildSection(tree, set, accounting.AccountTypeLiability, "Liabilities", false),
		Equity:      s.buildSection(tree, set, accounting.AccountTypeEquity, "Equity", false),
	}

	// Period earnings have not been closed to equity, so the income and
	// expense activity is folded into the equity section at read time.
	income := set.CategoryTotal(accounting.AccountTypeIncome)
	expenses := set.CategoryTotal(accounting.AccountTypeExpense)
	report.NetProfit = income.Sub(expenses).Round(2)
	report.Equity.Rows = append(report.Equity.Rows, ReportRow{
		Name:    "Net Profit",
		Balance: report.NetProfit,
	})
	report.Equity.Total = report.Equity.Total.Add(report.NetProfit).Round(2)

	report.Equation = report.Assets.Total.Sub(report.Liabilities.Total.Add(report.Equity.Total)).Round(2)
	report.Balanced = report.Equation.Abs().LessThan(decimal.NewFromFloat(balanceTolerance))

	s.cacheSet(ctx, key, report)
	return report, nil
}

// ===================== Income Statement =====================

// IncomeStatementReport is the revenue and expenses statement for a period.
// Accounts with no activity and a zero balance are suppressed. NetLabel is
// "Net Income" when revenue covers expenses, "Net Loss" otherwise, with
// NetAmount always the absolute magnitude.
type IncomeStatementReport struct {
	DateFrom  time.Time       `json:"date_from"`
	DateTo    time.Time       `json:"date_to"`
	Revenue   ReportSection   `json:"revenue"`
	Expenses  ReportSection   `json:"expenses"`
	NetLabel  string          `json:"net_label"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// IncomeStatement builds the income statement for a period
func (s *ReportService) IncomeStatement(ctx context.Context, dateFrom, dateTo time.Time, branchID *uuid.UUID) (*IncomeStatementReport, error) {
	key := s.cacheKey("income_statement", dateFrom, dateTo, branchID)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var report IncomeStatementReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	tree, set, err := s.aggregate(ctx, dateFrom, dateTo, branchID)
	if err != nil {
		return nil, err
	}

	report := &IncomeStatementReport{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Revenue:  s.buildSection(tree, set, accounting.AccountTypeIncome, "Revenue", true),
		Expenses: s.buildSection(tree, set, accounting.AccountTypeExpense, "Expenses", true),
	}

	net := report.Revenue.Total.Sub(report.Expenses.Total).Round(2)
	if net.IsNegative() {
		report.NetLabel = "Net Loss"
	} else {
		report.NetLabel = "Net Income"
	}
	report.NetAmount = net.Abs()

	s.cacheSet(ctx, key, report)
	return report, nil
}

// ===================== Chart of Accounts report =====================

// ChartAccountRow is one main account with its activity and folded subs
type ChartAccountRow struct {
	AccountID uuid.UUID         `json:"account_id"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Debit     decimal.Decimal   `json:"debit"`
	Credit    decimal.Decimal   `json:"credit"`
	Balance   decimal.Decimal   `json:"balance"`
	SubRows   []ChartAccountRow `json:"sub_rows,omitempty"`
}

// ChartCategory groups the main accounts of one top-level category. The
// category total sums only the mains; sub-account balances are already
// folded into their parents.
type ChartCategory struct {
	Category string            `json:"category"`
	Accounts []ChartAccountRow `json:"accounts"`
	Total    decimal.Decimal   `json:"total"`
}

// ChartOfAccountsReport is the full chart with period activity per account
type ChartOfAccountsReport struct {
	DateFrom   time.Time       `json:"date_from"`
	DateTo     time.Time       `json:"date_to"`
	Categories []ChartCategory `json:"categories"`
}

// ChartOfAccounts builds the chart-of-accounts activity report
func (s *ReportService) ChartOfAccounts(ctx context.Context, dateFrom, dateTo time.Time, branchID *uuid.UUID) (*ChartOfAccountsReport, error) {
	key := s.cacheKey("chart_of_accounts", dateFrom, dateTo, branchID)
	if cached, ok := s.cacheGet(ctx, key); ok {
		var report ChartOfAccountsReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	tree, set, err := s.aggregate(ctx, dateFrom, dateTo, branchID)
	if err != nil {
		return nil, err
	}

	report := &ChartOfAccountsReport{DateFrom: dateFrom, DateTo: dateTo}
	for _, category := range []accounting.AccountType{
		accounting.AccountTypeAsset,
		accounting.AccountTypeLiability,
		accounting.AccountTypeEquity,
		accounting.AccountTypeIncome,
		accounting.AccountTypeExpense,
	} {
		cc := ChartCategory{Category: category.String(), Total: decimal.Zero}
		for _, root := range tree.Roots() {
			if root.Type.Category() != category {
				continue
			}
			row := s.buildChartRow(tree, set, root)
			cc.Accounts = append(cc.Accounts, row)
			cc.Total = cc.Total.Add(row.Balance).Round(2)
		}
		report.Categories = append(report.Categories, cc)
	}

	s.cacheSet(ctx, key, report)
	return report, nil
}

func (s *ReportService) buildChartRow(tree *accounting.AccountTree, set *accounting.BalanceSet, a *accounting.Account) ChartAccountRow {
	b := set.Get(a.ID)
	row := ChartAccountRow{
		AccountID: a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Debit:     b.DebitTotal,
		Credit:    b.CreditTotal,
		Balance:   b.TotalBalance,
	}
	for _, child := range tree.ResolveChildren(a.ID) {
		row.SubRows = append(row.SubRows, s.buildChartRow(tree, set, child))
	}
	return row
}

// ===================== Sub-account detail =====================

// DetailLine is one ledger transaction with the running balance after it
type DetailLine struct {
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// SubAccountDetailReport lists an account's transactions in date order with
// a running balance that restarts at zero at the top of the window.
type SubAccountDetailReport struct {
	AccountID      uuid.UUID       `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	AccountName    string          `json:"account_name"`
	DateFrom       time.Time       `json:"date_from"`
	DateTo         time.Time       `json:"date_to"`
	Lines          []DetailLine    `json:"lines"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// SubAccountDetail builds the transaction detail for one account
func (s *ReportService) SubAccountDetail(ctx context.Context, accountID uuid.UUID, dateFrom, dateTo time.Time) (*SubAccountDetailReport, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Account not found")
	}

	entries, err := s.entryReader.ScanAccountEntries(ctx, accountID, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	report := &SubAccountDetailReport{
		AccountID:      accountID,
		AccountCode:    account.Code,
		AccountName:    account.Name,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		Lines:          make([]DetailLine, 0, len(entries)),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		ClosingBalance: decimal.Zero,
	}

	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.Debit).Sub(e.Credit).Round(2)
		report.Lines = append(report.Lines, DetailLine{
			Date:           e.Date,
			Description:    e.Description,
			Reference:      e.Reference,
			Debit:          e.Debit,
			Credit:         e.Credit,
			RunningBalance: running,
		})
		report.TotalDebit = report.TotalDebit.Add(e.Debit).Round(2)
		report.TotalCredit = report.TotalCredit.Add(e.Credit).Round(2)
	}
	report.ClosingBalance = running

	return report, nil
}

// ===================== helpers =====================

func (s *ReportService) aggregate(ctx context.Context, dateFrom, dateTo time.Time, branchID *uuid.UUID) (*accounting.AccountTree, *accounting.BalanceSet, error) {
	accounts, err := s.accountRepo.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.entryReader.ScanEntries(ctx, dateFrom, dateTo, branchID)
	if err != nil {
		return nil, nil, err
	}
	tree := accounting.NewAccountTree(accounts)
	set := s.aggregator.ComputeBalances(tree, entries, dateFrom, dateTo, branchID)
	return tree, set, nil
}

// buildSection assembles one category section. When suppressZero is set,
// accounts with no activity and a zero rolled-up balance are omitted.
func (s *ReportService) buildSection(tree *accounting.AccountTree, set *accounting.BalanceSet, category accounting.AccountType, title string, suppressZero bool) ReportSection {
	section := ReportSection{Title: title, Total: decimal.Zero}
	for _, root := range tree.Roots() {
		if root.Type.Category() != category {
			continue
		}
		if suppressZero && !set.ShouldDisplay(root.ID) {
			continue
		}
		row := s.buildReportRow(tree, set, root, suppressZero)
		section.Rows = append(section.Rows, row)
	}
	section.Total = set.CategoryTotal(category)
	return section
}

func (s *ReportService) buildReportRow(tree *accounting.AccountTree, set *accounting.BalanceSet, a *accounting.Account, suppressZero bool) ReportRow {
	row := ReportRow{
		AccountID: a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Balance:   set.Get(a.ID).TotalBalance,
	}
	for _, child := range tree.ResolveChildren(a.ID) {
		if suppressZero && !set.ShouldDisplay(child.ID) {
			continue
		}
		row.SubRows = append(row.SubRows, s.buildReportRow(tree, set, child, suppressZero))
	}
	return row
}

func (s *ReportService) cacheKey(report string, dateFrom, dateTo time.Time, branchID *uuid.UUID) string {
	branch := "all"
	if branchID != nil {
		branch = branchID.String()
	}
	return fmt.Sprintf("%s%s:%s:%s:%s", cacheKeyPrefix, report,
		dateFrom.Format("2006-01-02"), dateTo.Format("2006-01-02"), branch)
}

func (s *ReportService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *ReportService) cacheSet(ctx context.Context, key string, report any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("report cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, payload, s.cacheTTL)
}
