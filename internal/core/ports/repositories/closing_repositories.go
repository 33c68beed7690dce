package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClosingTx is the set of writes a close performs. Every call made through one ClosingTx
// commits or rolls back together.
type ClosingTx interface {
	// LockFiscalYears serializes, until the transaction ends, every close of the company that
	// touches a fiscal year in [first, last]. The reads below are only authoritative after it.
	LockFiscalYears(ctx context.Context, companyID string, first, last int) error

	// FiscalYearClosed reports whether the fiscal year already has a closing row.
	FiscalYearClosed(ctx context.Context, companyID string, fiscalYear int) (bool, error)

	// FindOverlappingPeriod returns a CLOSED or LOCKED period that overlaps [start, end] without
	// having exactly that key. Returns apperrors.ErrNotFound when there is none.
	FindOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error)

	// SumClosingTransfers returns the net credit posted to accountID by period_closing entries dated within [from, to].
	SumClosingTransfers(ctx context.Context, companyID, accountID string, from, to time.Time) (decimal.Decimal, error)

	// LockPeriod creates the period row as OPEN if it does not exist yet, then locks and returns it.
	// Concurrent callers for the same (company, start, end) are serialized on the lock.
	LockPeriod(ctx context.Context, period domain.AccountingPeriod) (*domain.AccountingPeriod, error)

	// MarkPeriodClosed updates a locked period to CLOSED with its closing metadata.
	MarkPeriodClosed(ctx context.Context, period domain.AccountingPeriod) error

	// InsertJournalEntry inserts an entry header.
	InsertJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// InsertJournalEntryLines inserts the lines of an entry.
	InsertJournalEntryLines(ctx context.Context, journalEntryID string, lines []domain.JournalEntryLine) error

	// ClaimFiscalYear inserts the fiscal-year closing row. Returns apperrors.ErrAlreadyClosed if one exists.
	ClaimFiscalYear(ctx context.Context, closing domain.FiscalYearClosing) error

	// AttachFiscalYearEntry records the closing entry on a claimed fiscal year.
	AttachFiscalYearEntry(ctx context.Context, fiscalYearClosingID, journalEntryID string) error

	// LockPeriodsInRange sets every period of the company inside [from, to] to LOCKED and returns how many changed.
	LockPeriodsInRange(ctx context.Context, companyID string, from, to time.Time, lockedBy string, at time.Time) (int64, error)
}

// ClosingStore runs fn inside a single storage transaction.
// If fn returns an error the transaction is rolled back; a failed rollback is reported
// with apperrors.ErrRollbackFailed in the returned chain.
type ClosingStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx ClosingTx) error) error
}
