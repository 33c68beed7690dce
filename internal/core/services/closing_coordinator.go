package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// closingCoordinator performs the writes of a close inside one storage transaction.
// Caller cancellation is not honored once writing starts; only writeTimeout bounds it.
type closingCoordinator struct {
	BaseService
	store        portsrepo.ClosingStore
	ledgerWriter portsrepo.LedgerWriter
	writeTimeout time.Duration
	now          func() time.Time
	newID        func() string
}

// writeState tracks how far a transaction got, for outcome classification.
type writeState struct {
	entryID string // set once the closing entry row was inserted
	partial bool   // set once any ledger-visible row was written
	claimed bool   // set once a row no compensation can remove was written
}

func (c *closingCoordinator) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.writeTimeout)
}

func (c *closingCoordinator) newClosingEntry(companyID string, ref domain.ReferenceType, date time.Time, desc, by string, now time.Time) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID: c.newID(),
		CompanyID:      companyID,
		ReferenceType:  ref,
		EntryDate:      date,
		Description:    desc,
		Status:         domain.Posted,
		AuditFields:    domain.NewAuditFields(by, now),
	}
}

// insertEntry writes the header and lines of a closing entry and records progress in st.
func (c *closingCoordinator) insertEntry(ctx context.Context, tx portsrepo.ClosingTx, entry domain.JournalEntry, lines []domain.JournalEntryLine, st *writeState) error {
	if err := tx.InsertJournalEntry(ctx, entry); err != nil {
		return err
	}
	st.entryID = entry.JournalEntryID
	st.partial = true

	stamped := make([]domain.JournalEntryLine, len(lines))
	for i, l := range lines {
		l.LineID = c.newID()
		l.JournalEntryID = entry.JournalEntryID
		stamped[i] = l
	}
	return tx.InsertJournalEntryLines(ctx, entry.JournalEntryID, stamped)
}

// commitPeriod re-checks eligibility under the fiscal-year locks and the period row lock,
// posts the entry and closes the period. [firstYear, lastYear] are the fiscal years the period touches.
func (c *closingCoordinator) commitPeriod(ctx context.Context, req domain.ClosePeriodRequest, firstYear, lastYear int, lines []domain.JournalEntryLine) (*domain.AccountingPeriod, error) {
	writeCtx, cancel := c.writeContext(ctx)
	defer cancel()

	now := c.now()
	audit := domain.NewAuditFields(req.ClosedBy, now)
	var (
		st     writeState
		closed domain.AccountingPeriod
	)

	err := c.store.WithTx(writeCtx, func(ctx context.Context, tx portsrepo.ClosingTx) error {
		if err := tx.LockFiscalYears(ctx, req.CompanyID, firstYear, lastYear); err != nil {
			return err
		}
		for year := firstYear; year <= lastYear; year++ {
			yearClosed, err := tx.FiscalYearClosed(ctx, req.CompanyID, year)
			if err != nil {
				return err
			}
			if yearClosed {
				return containingYearClosedError(year)
			}
		}
		overlap, err := tx.FindOverlappingPeriod(ctx, req.CompanyID, req.PeriodStart, req.PeriodEnd)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case err != nil:
			return err
		default:
			return periodOverlapError(*overlap)
		}

		period, err := tx.LockPeriod(ctx, domain.AccountingPeriod{
			PeriodID:    c.newID(),
			CompanyID:   req.CompanyID,
			PeriodName:  req.PeriodName,
			PeriodStart: req.PeriodStart,
			PeriodEnd:   req.PeriodEnd,
			Status:      domain.PeriodOpen,
			AuditFields: audit,
		})
		if err != nil {
			return err
		}
		if period.IsFinal() {
			return periodClosedError(*period)
		}

		if len(lines) > 0 {
			entry := c.newClosingEntry(req.CompanyID, domain.RefPeriodClosing, req.PeriodEnd,
				"Period closing: "+req.PeriodName, req.ClosedBy, now)
			if err := c.insertEntry(ctx, tx, entry, lines, &st); err != nil {
				return err
			}
		}

		period.Status = domain.PeriodClosed
		period.PeriodName = req.PeriodName
		period.ClosedBy = req.ClosedBy
		period.ClosedAt = &now
		period.JournalEntryID = st.entryID
		if req.Notes != "" {
			period.Notes = req.Notes
		}
		period.LastUpdatedAt = now
		period.LastUpdatedBy = req.ClosedBy
		if err := tx.MarkPeriodClosed(ctx, *period); err != nil {
			return err
		}
		closed = *period
		return nil
	})
	if err != nil {
		return nil, c.classify(ctx, err, st, slog.String("company_id", req.CompanyID), slog.String("period_name", req.PeriodName))
	}
	return &closed, nil
}

// commitFiscalYear sums the period transfers into reAccountID under the fiscal-year lock, claims the fiscal year,
// posts what compose returns for the remainder and locks every period inside the year.
func (c *closingCoordinator) commitFiscalYear(ctx context.Context, fy domain.FiscalYearClosing, yearStart time.Time, reAccountID string,
	compose func(transferred decimal.Decimal) []domain.JournalEntryLine) (*domain.FiscalYearClosing, int64, error) {
	writeCtx, cancel := c.writeContext(ctx)
	defer cancel()

	now := c.now()
	var (
		st     writeState
		locked int64
	)

	err := c.store.WithTx(writeCtx, func(ctx context.Context, tx portsrepo.ClosingTx) error {
		if err := tx.LockFiscalYears(ctx, fy.CompanyID, fy.FiscalYear, fy.FiscalYear); err != nil {
			return err
		}
		transferred, err := tx.SumClosingTransfers(ctx, fy.CompanyID, reAccountID, yearStart, fy.ClosingDate)
		if err != nil {
			return err
		}
		fy.TransferredAmount = transferred
		lines := compose(transferred)

		if err := tx.ClaimFiscalYear(ctx, fy); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyClosed) {
				return apperrors.NewAppError(409, "fiscal year is already closed", apperrors.ErrAlreadyClosed)
			}
			return err
		}
		st.partial = true
		st.claimed = true

		if len(lines) > 0 {
			entry := c.newClosingEntry(fy.CompanyID, domain.RefFiscalYearClosing, fy.ClosingDate,
				"Fiscal year closing", fy.ClosedBy, now)
			if err := c.insertEntry(ctx, tx, entry, lines, &st); err != nil {
				return err
			}
			if err := tx.AttachFiscalYearEntry(ctx, fy.FiscalYearClosingID, entry.JournalEntryID); err != nil {
				return err
			}
			fy.JournalEntryID = entry.JournalEntryID
		}

		n, err := tx.LockPeriodsInRange(ctx, fy.CompanyID, yearStart, fy.ClosingDate, fy.ClosedBy, now)
		if err != nil {
			return err
		}
		locked = n
		return nil
	})
	if err != nil {
		return nil, 0, c.classify(ctx, err, st, slog.String("company_id", fy.CompanyID), slog.Int("fiscal_year", fy.FiscalYear))
	}
	return &fy, locked, nil
}

// classify turns a transaction error into a ClosingError with the right outcome.
// When the rollback itself failed, the inserted entry is deleted as a second line of defence.
func (c *closingCoordinator) classify(ctx context.Context, err error, st writeState, attrs ...any) error {
	if !errors.Is(err, apperrors.ErrRollbackFailed) {
		if st.partial {
			c.LogWarn(ctx, "Closing transaction rolled back", append(attrs, slog.String("error", err.Error()))...)
			return apperrors.NewClosingError(apperrors.OutcomeRolledBack, err)
		}
		return apperrors.NewClosingError(apperrors.OutcomeNothingWritten, err)
	}

	if !st.partial {
		return apperrors.NewClosingError(apperrors.OutcomeNothingWritten, err)
	}

	compensated := true
	if st.entryID != "" {
		compCtx, cancel := c.writeContext(ctx)
		defer cancel()
		compErr := c.ledgerWriter.DeleteJournalEntry(compCtx, st.entryID)
		if compErr != nil && !errors.Is(compErr, apperrors.ErrNotFound) {
			compensated = false
			err = errors.Join(err, compErr)
		}
		attrs = append(attrs, slog.String("journal_entry_id", st.entryID))
	}

	if !compensated || st.claimed {
		c.LogError(ctx, err, "Closing rollback failed, manual reconciliation required", attrs...)
		return apperrors.NewClosingError(apperrors.OutcomeRollbackFailed, err)
	}

	c.LogWarn(ctx, "Closing rollback failed, orphan entry removed by compensation",
		append(attrs, slog.String("error", err.Error()))...)
	return apperrors.NewClosingError(apperrors.OutcomeRolledBack, err)
}
