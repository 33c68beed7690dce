package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read-only access to posted journal data
type LedgerReader interface {
	// ListPostedLines returns the non-deleted, POSTED income and expense lines of a company whose
	// entry_date is within [from, to]. Closing entries are excluded. Empty results are not an error.
	ListPostedLines(ctx context.Context, companyID string, from, to time.Time) ([]domain.LedgerLine, error)

	// SumAccountActivity returns the total debits and credits posted against an account up to and including asOf.
	SumAccountActivity(ctx context.Context, companyID, accountID string, asOf time.Time) (debits decimal.Decimal, credits decimal.Decimal, err error)

	// FindJournalEntryByID retrieves an entry with its lines.
	FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)
}

// LedgerWriter defines the compensating write the closing engine may issue outside a transaction
type LedgerWriter interface {
	// DeleteJournalEntry removes an entry and its lines. Used only to compensate a failed close.
	DeleteJournalEntry(ctx context.Context, journalEntryID string) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
