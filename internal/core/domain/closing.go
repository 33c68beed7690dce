package domain

import (
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// NetIncome is the income statement summary of a set of ledger lines.
type NetIncome struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
	LineCount     int             `json:"lineCount"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
}

// SystemAccounts are the two equity accounts used by a closing entry.
type SystemAccounts struct {
	RetainedEarnings Account
	IncomeSummary    Account
}

// ClosePeriodRequest carries the inputs of a period close.
type ClosePeriodRequest struct {
	CompanyID   string
	PeriodStart time.Time
	PeriodEnd   time.Time
	ClosedBy    string
	PeriodName  string // Optional
	Notes       string // Optional
}

// CloseFiscalYearRequest carries the inputs of a fiscal-year close.
type CloseFiscalYearRequest struct {
	CompanyID  string
	FiscalYear int
	ClosedBy   string
	Notes      string
}

// ClosingResult is the engine's answer to a close request. It is not persisted.
type ClosingResult struct {
	Success                 bool              `json:"success"`
	Err                     error             `json:"-"`
	Outcome                 apperrors.Outcome `json:"outcome"`
	JournalEntryID          string            `json:"journalEntryID,omitempty"`
	PeriodID                string            `json:"periodID,omitempty"`
	FiscalYearClosingID     string            `json:"fiscalYearClosingID,omitempty"`
	NetIncome               decimal.Decimal   `json:"netIncome"`
	RetainedEarningsBalance decimal.Decimal   `json:"retainedEarningsBalance"`
	Warnings                []string          `json:"warnings,omitempty"`
}

// CanCloseResult answers whether a period or fiscal year may be closed.
type CanCloseResult struct {
	CanClose bool   `json:"canClose"`
	Reason   string `json:"reason,omitempty"`
	Err      error  `json:"-"`
}

// ClosingPreview is a dry run of a period close.
type ClosingPreview struct {
	NetIncome
	RetainedEarningsAccountID string             `json:"retainedEarningsAccountID"`
	IncomeSummaryAccountID    string             `json:"incomeSummaryAccountID"`
	Lines                     []JournalEntryLine `json:"lines"`
	CanClose                  bool               `json:"canClose"`
	Reason                    string             `json:"reason,omitempty"`
}
