package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry mirrors a row of the journal_entries table.
type JournalEntry struct {
	JournalEntryID string     `db:"journal_entry_id"`
	CompanyID      string     `db:"company_id"`
	ReferenceType  string     `db:"reference_type"`
	EntryDate      time.Time  `db:"entry_date"`
	Description    string     `db:"description"`
	Status         string     `db:"status"`
	IsDeleted      bool       `db:"is_deleted"`
	DeletedAt      *time.Time `db:"deleted_at"`
	AuditFields
}

// JournalEntryLine mirrors a row of the journal_entry_lines table.
type JournalEntryLine struct {
	LineID         string          `db:"line_id"`
	JournalEntryID string          `db:"journal_entry_id"`
	AccountID      string          `db:"account_id"`
	DebitAmount    decimal.Decimal `db:"debit_amount"`
	CreditAmount   decimal.Decimal `db:"credit_amount"`
	Description    string          `db:"description"`
}
