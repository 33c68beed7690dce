package domain

import "time"

// PeriodStatus is the lifecycle state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// AccountingPeriod is a dated range of the ledger that can be closed once.
type AccountingPeriod struct {
	PeriodID       string       `json:"periodID"`
	CompanyID      string       `json:"companyID"`
	PeriodName     string       `json:"periodName"`
	PeriodStart    time.Time    `json:"periodStart"`
	PeriodEnd      time.Time    `json:"periodEnd"`
	Status         PeriodStatus `json:"status"`
	ClosedBy       string       `json:"closedBy,omitempty"`
	ClosedAt       *time.Time   `json:"closedAt,omitempty"`
	JournalEntryID string       `json:"journalEntryID,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	AuditFields
}

// IsFinal reports whether the period can no longer be closed.
func (p AccountingPeriod) IsFinal() bool {
	return p.Status == PeriodClosed || p.Status == PeriodLocked
}

// DefaultPeriodName derives a display name for a period range.
// A whole calendar month renders as "January 2026", anything else as "2026-01-01 - 2026-03-31".
func DefaultPeriodName(start, end time.Time) string {
	firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	if DateOnly(start).Equal(firstOfMonth) && DateOnly(end).Equal(lastOfMonth) {
		return start.Format("January 2006")
	}
	return start.Format("2006-01-02") + " - " + end.Format("2006-01-02")
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
