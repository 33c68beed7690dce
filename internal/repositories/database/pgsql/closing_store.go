package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/closing_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxClosingStore runs closing writes in a single Postgres transaction.
type PgxClosingStore struct {
	BaseRepository
}

func newPgxClosingStore(pool *pgxpool.Pool) portsrepo.ClosingStore {
	return &PgxClosingStore{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ClosingStore = (*PgxClosingStore)(nil)

func (s *PgxClosingStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.ClosingTx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback(context.WithoutCancel(ctx), tx)
			panic(p)
		}
	}()

	if err = fn(ctx, &pgxClosingTx{tx: tx}); err != nil {
		// The caller's context may be the reason fn failed; the rollback must still reach the server.
		if rbErr := s.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("%w: %v", apperrors.ErrRollbackFailed, rbErr))
		}
		return err
	}

	// A failed COMMIT leaves Postgres with an aborted transaction, so nothing was written.
	return s.Commit(ctx, tx)
}

type pgxClosingTx struct {
	tx pgx.Tx
}

var _ portsrepo.ClosingTx = (*pgxClosingTx)(nil)

// LockFiscalYears takes one transaction-scoped advisory lock per fiscal year, in ascending order.
// Advisory locks also cover closing rows that do not exist yet.
func (t *pgxClosingTx) LockFiscalYears(ctx context.Context, companyID string, first, last int) error {
	for year := first; year <= last; year++ {
		if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), $2);`, companyID, int32(year)); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to lock fiscal year %d of company %s", year, companyID), err)
		}
	}
	return nil
}

func (t *pgxClosingTx) FiscalYearClosed(ctx context.Context, companyID string, fiscalYear int) (bool, error) {
	var closed bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM fiscal_year_closings WHERE company_id = $1 AND fiscal_year = $2);`,
		companyID, fiscalYear).Scan(&closed)
	if err != nil {
		return false, apperrors.NewStorageError("failed to check fiscal year closing", err)
	}
	return closed, nil
}

func (t *pgxClosingTx) FindOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	return findOverlappingPeriod(ctx, t.tx, companyID, start, end)
}

func (t *pgxClosingTx) SumClosingTransfers(ctx context.Context, companyID, accountID string, from, to time.Time) (decimal.Decimal, error) {
	return sumClosingTransfers(ctx, t.tx, companyID, accountID, from, to)
}

func (t *pgxClosingTx) LockPeriod(ctx context.Context, period domain.AccountingPeriod) (*domain.AccountingPeriod, error) {
	m := mapping.ToModelAccountingPeriod(period)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO accounting_periods (
			period_id, company_id, period_name, period_start, period_end, status, notes,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (company_id, period_start, period_end) DO NOTHING;`,
		m.PeriodID, m.CompanyID, m.PeriodName, m.PeriodStart, m.PeriodEnd, m.Status, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create accounting period", err)
	}

	periods, err := queryPeriods(ctx, t.tx,
		`WHERE company_id = $1 AND period_start = $2 AND period_end = $3 FOR UPDATE;`,
		m.CompanyID, m.PeriodStart, m.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, apperrors.NewStorageError("accounting period vanished after insert", pgx.ErrNoRows)
	}
	return &periods[0], nil
}

func (t *pgxClosingTx) MarkPeriodClosed(ctx context.Context, period domain.AccountingPeriod) error {
	m := mapping.ToModelAccountingPeriod(period)
	tag, err := t.tx.Exec(ctx, `
		UPDATE accounting_periods
		SET status = 'CLOSED', period_name = $2, closed_by = $3, closed_at = $4, journal_entry_id = $5,
		    notes = COALESCE($6, notes), last_updated_at = $7, last_updated_by = $8
		WHERE period_id = $1 AND status = 'OPEN';`,
		m.PeriodID, m.PeriodName, m.ClosedBy, m.ClosedAt, m.JournalEntryID,
		m.Notes, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to close accounting period "+period.PeriodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyClosed
	}
	return nil
}

func (t *pgxClosingTx) InsertJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO journal_entries (
			journal_entry_id, company_id, reference_type, entry_date, description, status, is_deleted,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9, $10);`,
		m.JournalEntryID, m.CompanyID, m.ReferenceType, m.EntryDate, m.Description, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewStorageError("failed to insert journal entry "+entry.JournalEntryID, err)
	}
	return nil
}

func (t *pgxClosingTx) InsertJournalEntryLines(ctx context.Context, journalEntryID string, lines []domain.JournalEntryLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_entry_lines (line_id, journal_entry_id, line_no, account_id, debit_amount, credit_amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, line := range lines {
		batch.Queue(query, line.LineID, journalEntryID, i+1, line.AccountID, line.DebitAmount, line.CreditAmount, line.Description)
	}
	// Close reports the first failed statement of the batch.
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewStorageError("failed to insert lines for journal entry "+journalEntryID, err)
	}
	return nil
}

func (t *pgxClosingTx) ClaimFiscalYear(ctx context.Context, closing domain.FiscalYearClosing) error {
	m := mapping.ToModelFiscalYearClosing(closing)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO fiscal_year_closings (`+fiscalYearColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
		m.FiscalYearClosingID, m.CompanyID, m.FiscalYear, m.ClosingDate, m.TotalRevenue, m.TotalExpenses, m.NetIncome,
		m.TransferredAmount, m.JournalEntryID, m.Status, m.ClosedBy, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperrors.ErrAlreadyClosed
		}
		return apperrors.NewStorageError("failed to record fiscal year closing", err)
	}
	return nil
}

func (t *pgxClosingTx) AttachFiscalYearEntry(ctx context.Context, fiscalYearClosingID, journalEntryID string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE fiscal_year_closings SET journal_entry_id = $2 WHERE fiscal_year_closing_id = $1;`,
		fiscalYearClosingID, journalEntryID)
	if err != nil {
		return apperrors.NewStorageError("failed to attach entry to fiscal year closing", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t *pgxClosingTx) LockPeriodsInRange(ctx context.Context, companyID string, from, to time.Time, lockedBy string, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE accounting_periods
		SET status = 'LOCKED', last_updated_at = $4, last_updated_by = $5
		WHERE company_id = $1 AND period_start >= $2 AND period_end <= $3 AND status <> 'LOCKED';`,
		companyID, from, to, at, lockedBy)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to lock accounting periods", err)
	}
	return tag.RowsAffected(), nil
}
