package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalYearStatus is the state of a fiscal-year closing record.
type FiscalYearStatus string

const (
	FiscalYearPosted FiscalYearStatus = "POSTED"
)

// FiscalYearClosing records the annual close of a company's books.
type FiscalYearClosing struct {
	FiscalYearClosingID string           `json:"fiscalYearClosingID"`
	CompanyID           string           `json:"companyID"`
	FiscalYear          int              `json:"fiscalYear"`
	ClosingDate         time.Time        `json:"closingDate"`
	TotalRevenue        decimal.Decimal  `json:"totalRevenue"`
	TotalExpenses       decimal.Decimal  `json:"totalExpenses"`
	NetIncome           decimal.Decimal  `json:"netIncome"`
	TransferredAmount   decimal.Decimal  `json:"transferredAmount"` // Already moved by period closings
	JournalEntryID      string           `json:"journalEntryID,omitempty"`
	Status              FiscalYearStatus `json:"status"`
	ClosedBy            string           `json:"closedBy"`
	Notes               string           `json:"notes,omitempty"`
	AuditFields
}

// FiscalYearBounds returns the first and last day of fiscal year fy when the year starts in startMonth.
// The fiscal year is named after the calendar year in which it ends.
func FiscalYearBounds(fy int, startMonth time.Month) (time.Time, time.Time) {
	if startMonth < time.January || startMonth > time.December {
		startMonth = time.January
	}
	startYear := fy
	if startMonth != time.January {
		startYear = fy - 1
	}
	start := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return start, end
}

// FiscalYearOf returns the fiscal year that contains date when years start in startMonth.
func FiscalYearOf(date time.Time, startMonth time.Month) int {
	if startMonth <= time.January || startMonth > time.December {
		return date.Year()
	}
	if date.Month() >= startMonth {
		return date.Year() + 1
	}
	return date.Year()
}
