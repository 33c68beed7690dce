package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingPeriod mirrors a row of the accounting_periods table.
type AccountingPeriod struct {
	PeriodID       string     `db:"period_id"`
	CompanyID      string     `db:"company_id"`
	PeriodName     string     `db:"period_name"`
	PeriodStart    time.Time  `db:"period_start"`
	PeriodEnd      time.Time  `db:"period_end"`
	Status         string     `db:"status"`
	ClosedBy       *string    `db:"closed_by"`
	ClosedAt       *time.Time `db:"closed_at"`
	JournalEntryID *string    `db:"journal_entry_id"`
	Notes          *string    `db:"notes"`
	AuditFields
}

// FiscalYearClosing mirrors a row of the fiscal_year_closings table.
type FiscalYearClosing struct {
	FiscalYearClosingID string          `db:"fiscal_year_closing_id"`
	CompanyID           string          `db:"company_id"`
	FiscalYear          int             `db:"fiscal_year"`
	ClosingDate         time.Time       `db:"closing_date"`
	TotalRevenue        decimal.Decimal `db:"total_revenue"`
	TotalExpenses       decimal.Decimal `db:"total_expenses"`
	NetIncome           decimal.Decimal `db:"net_income"`
	TransferredAmount   decimal.Decimal `db:"transferred_amount"`
	JournalEntryID      *string         `db:"journal_entry_id"`
	Status              string          `db:"status"`
	ClosedBy            string          `db:"closed_by"`
	Notes               *string         `db:"notes"`
	AuditFields
}
