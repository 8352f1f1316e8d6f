package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/accounting"
	"github.com/smbledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerService provides application-level chart-of-accounts and posting
// operations. All writes that touch balances go through the repository's
// atomic save paths.
type LedgerService struct {
	accountRepo accounting.AccountRepository
	journalRepo accounting.JournalRepository
	generalRepo accounting.GeneralJournalRepository
	poster      *accounting.LedgerPoster
	logger      *zap.Logger
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) LedgerServiceOption {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	accountRepo accounting.AccountRepository,
	journalRepo accounting.JournalRepository,
	generalRepo accounting.GeneralJournalRepository,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		generalRepo: generalRepo,
		poster:      accounting.NewLedgerPoster(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Chart of Accounts =====================

// CreateAccountRequest is the input for creating an account
type CreateAccountRequest struct {
	Code           string          `json:"code" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	ParentID       *uuid.UUID      `json:"parent_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	SortOrder      int             `json:"sort_order"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	ParentID       *uuid.UUID      `json:"parent_id,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	IsSystem       bool            `json:"is_system"`
	SortOrder      int             `json:"sort_order"`
	FullPath       []string        `json:"full_path,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toAccountResponse(a *accounting.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		ParentID:       a.ParentID,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		IsSystem:       a.IsSystem,
		SortOrder:      a.SortOrder,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// CreateAccount adds an account to the chart, validating the parent link
// against the full tree.
func (s *LedgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	if existing, err := s.accountRepo.FindByCode(ctx, req.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Account code already in use: "+req.Code)
	}

	account, err := accounting.NewAccount(req.Code, req.Name, accounting.AccountType(req.Type), req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	account.SortOrder = req.SortOrder

	if req.ParentID != nil {
		tree, err := s.loadTree(ctx)
		if err != nil {
			return nil, err
		}
		parent := tree.Get(*req.ParentID)
		if parent == nil {
			return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Parent account not found")
		}
		if parent.Type.Category() != account.Type.Category() {
			return nil, shared.NewDomainError(shared.ErrCodeValidation, "Parent account must share the account's category")
		}
		account.ParentID = req.ParentID
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created",
		zap.String("code", account.Code),
		zap.String("type", string(account.Type)))
	return toAccountResponse(account), nil
}

// GetAccount returns one account with its resolved tree path
func (s *LedgerService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	account := tree.Get(id)
	if account == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Account not found")
	}
	resp := toAccountResponse(account)
	if path, err := tree.FullPath(id); err == nil {
		resp.FullPath = path
	}
	return resp, nil
}

// ListAccounts returns the chart in tree display order: parents before
// children, siblings by sort order then code.
func (s *LedgerService) ListAccounts(ctx context.Context) ([]AccountResponse, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	ordered := make([]AccountResponse, 0)
	var walk func(accounts []*accounting.Account)
	walk = func(accounts []*accounting.Account) {
		for _, a := range accounts {
			ordered = append(ordered, *toAccountResponse(a))
			walk(tree.ResolveChildren(a.ID))
		}
	}
	walk(tree.Roots())
	return ordered, nil
}

// RenameAccount updates an account's display name
func (s *LedgerService) RenameAccount(ctx context.Context, id uuid.UUID, name string) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ChangeAccountType retypes an account. System accounts and accounts with
// activity refuse the change in the domain layer.
func (s *LedgerService) ChangeAccountType(ctx context.Context, id uuid.UUID, accountType string) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.ChangeType(accounting.AccountType(accountType)); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// MoveAccount reparents an account after cycle validation against the tree.
// Passing uuid.Nil as newParentID moves the account to the root.
func (s *LedgerService) MoveAccount(ctx context.Context, id, newParentID uuid.UUID) (*AccountResponse, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := tree.SetParent(id, newParentID); err != nil {
		return nil, err
	}
	account := tree.Get(id)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account moved",
		zap.String("code", account.Code),
		zap.Stringer("new_parent", newParentID))
	return toAccountResponse(account), nil
}

// DeleteAccount removes an account. System accounts, accounts with activity,
// and accounts with children are protected.
func (s *LedgerService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return err
	}
	account := tree.Get(id)
	if account == nil {
		return shared.NewDomainError(shared.ErrCodeNotFound, "Account not found")
	}
	if err := account.EnsureDeletable(); err != nil {
		return err
	}
	if len(tree.ResolveChildren(id)) > 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidState, "Cannot delete an account with sub-accounts")
	}
	return s.accountRepo.Delete(ctx, id)
}

// ===================== Posting =====================

// PostJournalRequest is the input for a two-sided posting
type PostJournalRequest struct {
	DebitAccountID  uuid.UUID       `json:"debit_account_id" binding:"required"`
	CreditAccountID uuid.UUID       `json:"credit_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Date            time.Time       `json:"date" binding:"required"`
	Description     string          `json:"description"`
	SourceType      string          `json:"source_type"`
	SourceID        *uuid.UUID      `json:"source_id"`
}

// JournalResponse represents a posted journal in API responses
type JournalResponse struct {
	ID              uuid.UUID       `json:"id"`
	DebitAccountID  uuid.UUID       `json:"debit_account_id"`
	CreditAccountID uuid.UUID       `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toJournalResponse(j *accounting.Journal) *JournalResponse {
	return &JournalResponse{
		ID:              j.ID,
		DebitAccountID:  j.DebitAccountID,
		CreditAccountID: j.CreditAccountID,
		Amount:          j.Amount,
		Date:            j.Date,
		Description:     j.Description,
		CreatedAt:       j.CreatedAt,
	}
}

// PostJournal posts a two-sided entry: journal row and both account balances
// are written in one store transaction.
func (s *LedgerService) PostJournal(ctx context.Context, req PostJournalRequest) (*JournalResponse, error) {
	debit, err := s.findAccount(ctx, req.DebitAccountID)
	if err != nil {
		return nil, err
	}
	credit, err := s.findAccount(ctx, req.CreditAccountID)
	if err != nil {
		return nil, err
	}

	journal, err := s.poster.PostTwoSided(debit, credit, req.Amount, req.Date)
	if err != nil {
		return nil, err
	}
	journal.Description = req.Description
	if req.SourceType != "" && req.SourceID != nil {
		journal.WithSource(accounting.SourceDocumentType(req.SourceType), *req.SourceID)
	}

	if err := s.journalRepo.SaveWithAccounts(ctx, journal, []*accounting.Account{debit, credit}); err != nil {
		return nil, err
	}
	s.logger.Info("journal posted",
		zap.String("debit", debit.Code),
		zap.String("credit", credit.Code),
		zap.String("amount", req.Amount.StringFixed(2)))
	return toJournalResponse(journal), nil
}

// PostGeneralJournalRequest is the input for a multi-line entry
type PostGeneralJournalRequest struct {
	Date        time.Time                     `json:"date" binding:"required"`
	Description string                        `json:"description"`
	Lines       []accounting.JournalLineInput `json:"lines" binding:"required"`
}

// GeneralJournalResponse represents a multi-line entry in API responses
type GeneralJournalResponse struct {
	ID          uuid.UUID       `json:"id"`
	Reference   string          `json:"reference"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	LineCount   int             `json:"line_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PostGeneralJournal validates, numbers, and atomically persists a balanced
// multi-line entry. Validation failures leave every account untouched.
func (s *LedgerService) PostGeneralJournal(ctx context.Context, req PostGeneralJournalRequest) (*GeneralJournalResponse, error) {
	accounts := make(map[uuid.UUID]*accounting.Account, len(req.Lines))
	for _, line := range req.Lines {
		if _, seen := accounts[line.AccountID]; seen {
			continue
		}
		account, err := s.findAccount(ctx, line.AccountID)
		if err != nil {
			return nil, err
		}
		accounts[line.AccountID] = account
	}

	reference, err := s.generalRepo.NextReference(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.poster.PostMultiLine(req.Date, reference, req.Description, req.Lines, accounts)
	if err != nil {
		return nil, err
	}

	touched := make([]*accounting.Account, 0, len(accounts))
	for _, a := range accounts {
		touched = append(touched, a)
	}
	if err := s.generalRepo.SaveWithAccounts(ctx, entry, touched); err != nil {
		return nil, err
	}
	s.logger.Info("general journal posted",
		zap.String("reference", entry.Reference),
		zap.Int("lines", len(entry.Lines)))
	return &GeneralJournalResponse{
		ID:          entry.ID,
		Reference:   entry.Reference,
		Date:        entry.Date,
		Description: entry.Description,
		TotalDebit:  entry.TotalDebit,
		TotalCredit: entry.TotalCredit,
		LineCount:   len(entry.Lines),
		CreatedAt:   entry.CreatedAt,
	}, nil
}

// ReverseJournal posts an equal-and-opposite entry against an existing one
func (s *LedgerService) ReverseJournal(ctx context.Context, journalID uuid.UUID, date time.Time) (*JournalResponse, error) {
	original, err := s.journalRepo.FindByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Journal not found")
	}
	// The reversal debits the original credit account and credits the
	// original debit account.
	debit, err := s.findAccount(ctx, original.CreditAccountID)
	if err != nil {
		return nil, err
	}
	credit, err := s.findAccount(ctx, original.DebitAccountID)
	if err != nil {
		return nil, err
	}
	reversal, err := s.poster.ReverseTwoSided(original, debit, credit, date)
	if err != nil {
		return nil, err
	}
	if err := s.journalRepo.SaveWithAccounts(ctx, reversal, []*accounting.Account{debit, credit}); err != nil {
		return nil, err
	}
	return toJournalResponse(reversal), nil
}

func (s *LedgerService) findAccount(ctx context.Context, id uuid.UUID) (*accounting.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError(shared.ErrCodeNotFound, "Account not found")
	}
	return account, nil
}

func (s *LedgerService) loadTree(ctx context.Context) (*accounting.AccountTree, error) {
	accounts, err := s.accountRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return accounting.NewAccountTree(accounts), nil
}
