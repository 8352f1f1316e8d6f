package accounting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smbledger/backend/internal/domain/shared"
)

// AccountType represents the ledger classification of an account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"

	// Sub-types. Each belongs to one of the five top-level categories.
	AccountTypeAccountsReceivable    AccountType = "ACCOUNTS_RECEIVABLE"
	AccountTypeOtherCurrentAsset     AccountType = "OTHER_CURRENT_ASSET"
	AccountTypeFixedAsset            AccountType = "FIXED_ASSET"
	AccountTypeBank                  AccountType = "BANK"
	AccountTypeAccountsPayable       AccountType = "ACCOUNTS_PAYABLE"
	AccountTypeOtherCurrentLiability AccountType = "OTHER_CURRENT_LIABILITY"
	AccountTypeCostOfGoodsSold       AccountType = "COST_OF_GOODS_SOLD"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense,
		AccountTypeAccountsReceivable, AccountTypeOtherCurrentAsset, AccountTypeFixedAsset, AccountTypeBank,
		AccountTypeAccountsPayable, AccountTypeOtherCurrentLiability, AccountTypeCostOfGoodsSold:
		return true
	}
	return false
}

// String returns the string representation
func (t AccountType) String() string {
	return string(t)
}

// Category returns the top-level category for the account type
func (t AccountType) Category() AccountType {
	switch t {
	case AccountTypeAccountsReceivable, AccountTypeOtherCurrentAsset, AccountTypeFixedAsset, AccountTypeBank:
		return AccountTypeAsset
	case AccountTypeAccountsPayable, AccountTypeOtherCurrentLiability:
		return AccountTypeLiability
	case AccountTypeCostOfGoodsSold:
		return AccountTypeExpense
	default:
		return t
	}
}

// IsDebitNormal returns true for accounts that increase on the debit side
func (t AccountType) IsDebitNormal() bool {
	switch t.Category() {
	case AccountTypeAsset, AccountTypeExpense:
		return true
	}
	return false
}

// Account represents one node of the chart of accounts.
// Accounts form a tree via ParentID; CurrentBalance is the running balance
// maintained by ledger postings (opening balance plus the signed sum of all
// postings to date, positive on the account's normal side).
type Account struct {
	shared.BaseAggregateRoot
	Code           string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Type           AccountType     `gorm:"type:varchar(30);not null;index"`
	ParentID       *uuid.UUID      `gorm:"type:uuid;index"`
	Description    string          `gorm:"type:varchar(500)"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsActive       bool            `gorm:"not null;default:true;index"`
	IsSystem       bool            `gorm:"not null;default:false"`
	SortOrder      int             `gorm:"not null;default:0"`
	BranchID       *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new chart-of-accounts entry
func NewAccount(code, name string, accountType AccountType, openingBalance decimal.Decimal) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Account code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Account code cannot exceed 20 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Invalid account type %q", accountType))
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              accountType,
		OpeningBalance:    openingBalance.Round(2),
		CurrentBalance:    openingBalance.Round(2),
		IsActive:          true,
	}

	a.AddDomainEvent(NewAccountCreatedEvent(a))

	return a, nil
}

// NewSystemAccount creates a seeded account that cannot be deleted or retyped
func NewSystemAccount(code, name string, accountType AccountType) (*Account, error) {
	a, err := NewAccount(code, name, accountType, decimal.Zero)
	if err != nil {
		return nil, err
	}
	a.IsSystem = true
	return a, nil
}

// Rename changes the display name
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError(shared.ErrCodeValidation, "Account name cannot be empty")
	}
	a.Name = name
	a.IncrementVersion()
	return nil
}

// ChangeType changes the account classification. System accounts keep the
// type they were seeded with.
func (a *Account) ChangeType(accountType AccountType) error {
	if a.IsSystem {
		return shared.NewDomainError(shared.ErrCodeSystemAccountProtected,
			fmt.Sprintf("System account %s cannot change type", a.Code))
	}
	if !accountType.IsValid() {
		return shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("Invalid account type %q", accountType))
	}
	a.Type = accountType
	a.IncrementVersion()
	return nil
}

// Deactivate hides the account from new postings without deleting history
func (a *Account) Deactivate() {
	a.IsActive = false
	a.IncrementVersion()
}

// Activate re-enables the account
func (a *Account) Activate() {
	a.IsActive = true
	a.IncrementVersion()
}

// EnsureDeletable rejects deletion of system accounts
func (a *Account) EnsureDeletable() error {
	if a.IsSystem {
		return shared.NewDomainError(shared.ErrCodeSystemAccountProtected,
			fmt.Sprintf("System account %s cannot be deleted", a.Code))
	}
	return nil
}

// ApplyDebit adjusts the running balance for a debit posting.
// Debit-normal accounts (Asset, Expense) increase; the rest decrease.
func (a *Account) ApplyDebit(amount decimal.Decimal) {
	if a.Type.IsDebitNormal() {
		a.CurrentBalance = a.CurrentBalance.Add(amount).Round(2)
	} else {
		a.CurrentBalance = a.CurrentBalance.Sub(amount).Round(2)
	}
	a.IncrementVersion()
}

// ApplyCredit adjusts the running balance for a credit posting.
// Credit-normal accounts (Liability, Equity, Income) increase; the rest decrease.
func (a *Account) ApplyCredit(amount decimal.Decimal) {
	if a.Type.IsDebitNormal() {
		a.CurrentBalance = a.CurrentBalance.Sub(amount).Round(2)
	} else {
		a.CurrentBalance = a.CurrentBalance.Add(amount).Round(2)
	}
	a.IncrementVersion()
}

// IsBankAccount reports whether the account can own bank transactions
// and reconciliation sessions.
func (a *Account) IsBankAccount() bool {
	return a.Type == AccountTypeBank
}
