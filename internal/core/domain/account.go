package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance is the side on which an account increases.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Sub-type tags that mark the system accounts used by period closing.
const (
	SubTypeRetainedEarnings = "retained_earnings"
	SubTypeIncomeSummary    = "income_summary"
)

// Account represents a row of a company's chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	CompanyID       string          `json:"companyID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	SubType         string          `json:"subType"` // Free-form tag, e.g. retained_earnings
	NormalBalance   NormalBalance   `json:"normalBalance"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	ParentAccountID string          `json:"parentAccountID"` // Empty when top-level
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// IsProfitAndLoss reports whether the account feeds net income.
func (a Account) IsProfitAndLoss() bool {
	return a.AccountType == Income || a.AccountType == Expense
}

// SystemAccountQuery locates a system account either by its code or its sub-type tag.
type SystemAccountQuery struct {
	Code    string
	SubType string
}
