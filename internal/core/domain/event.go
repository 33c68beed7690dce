package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosingKind distinguishes period closes from fiscal-year closes.
type ClosingKind string

const (
	KindPeriod     ClosingKind = "period"
	KindFiscalYear ClosingKind = "fiscal_year"
)

// ClosingEvent is published after a close commits.
type ClosingEvent struct {
	Kind                ClosingKind     `json:"kind"`
	CompanyID           string          `json:"companyID"`
	PeriodID            string          `json:"periodID,omitempty"`
	FiscalYearClosingID string          `json:"fiscalYearClosingID,omitempty"`
	PeriodStart         time.Time       `json:"periodStart"`
	PeriodEnd           time.Time       `json:"periodEnd"`
	JournalEntryID      string          `json:"journalEntryID,omitempty"`
	NetIncome           decimal.Decimal `json:"netIncome"`
	ClosedBy            string          `json:"closedBy"`
	OccurredAt          time.Time       `json:"occurredAt"`
}
