package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
)

// ReferenceType tags the origin of a journal entry.
type ReferenceType string

const (
	RefManual            ReferenceType = "manual"
	RefPeriodClosing     ReferenceType = "period_closing"
	RefFiscalYearClosing ReferenceType = "fiscal_year_closing"
)

// IsClosing reports whether entries of this reference type were produced by the closing engine.
func (r ReferenceType) IsClosing() bool {
	return r == RefPeriodClosing || r == RefFiscalYearClosing
}

// JournalEntry is the header of a balanced set of journal lines.
type JournalEntry struct {
	JournalEntryID string        `json:"journalEntryID"`
	CompanyID      string        `json:"companyID"`
	ReferenceType  ReferenceType `json:"referenceType"`
	EntryDate      time.Time     `json:"entryDate"`
	Description    string        `json:"description"`
	Status         JournalStatus `json:"status"`
	IsDeleted      bool          `json:"isDeleted"`
	DeletedAt      *time.Time    `json:"deletedAt,omitempty"`
	AuditFields

	Lines []JournalEntryLine `json:"lines,omitempty"` // Populated on demand
}

// Countable reports whether the entry participates in balance computations.
func (j JournalEntry) Countable() bool {
	return j.Status == Posted && !j.IsDeleted && j.DeletedAt == nil
}
