package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/closing_engine/internal/models"
	"github.com/SscSPs/closing_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// countableEntry is the filter every balance query applies to journal_entries.
const countableEntry = `j.status = 'POSTED' AND j.is_deleted = FALSE AND j.deleted_at IS NULL`

// ListPostedLines returns income and expense lines only; closing entries never feed net income.
func (r *PgxLedgerRepository) ListPostedLines(ctx context.Context, companyID string, from, to time.Time) ([]domain.LedgerLine, error) {
	query := `
		SELECT l.account_id, a.account_type, l.debit_amount, l.credit_amount
		FROM journal_entry_lines l
		JOIN journal_entries j ON l.journal_entry_id = j.journal_entry_id
		JOIN accounts a ON l.account_id = a.account_id
		WHERE j.company_id = $1
		  AND j.entry_date BETWEEN $2 AND $3
		  AND ` + countableEntry + `
		  AND j.reference_type NOT IN ('period_closing', 'fiscal_year_closing')
		  AND a.account_type IN ('INCOME', 'EXPENSE')
		ORDER BY j.entry_date, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query posted lines for company "+companyID, err)
	}
	defer rows.Close()

	result := []domain.LedgerLine{}
	for rows.Next() {
		var line domain.LedgerLine
		var accountType string
		if err := rows.Scan(&line.AccountID, &accountType, &line.DebitAmount, &line.CreditAmount); err != nil {
			return nil, apperrors.NewStorageError("failed to scan posted line", err)
		}
		line.AccountType = domain.AccountType(accountType)
		result = append(result, line)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("error iterating posted lines for company "+companyID, err)
	}
	return result, nil
}

func (r *PgxLedgerRepository) SumAccountActivity(ctx context.Context, companyID, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_entry_lines l
		JOIN journal_entries j ON l.journal_entry_id = j.journal_entry_id
		WHERE j.company_id = $1 AND l.account_id = $2 AND j.entry_date <= $3
		  AND ` + countableEntry + `;
	`
	var debits, credits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, companyID, accountID, asOf).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewStorageError("failed to sum activity for account "+accountID, err)
	}
	return debits, credits, nil
}

// sumClosingTransfers runs inside a closing transaction, after the fiscal-year lock.
func sumClosingTransfers(ctx context.Context, q interface {
	QueryRow(context.Context, string, ...any) pgx.Row
}, companyID, accountID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.credit_amount - l.debit_amount), 0)
		FROM journal_entry_lines l
		JOIN journal_entries j ON l.journal_entry_id = j.journal_entry_id
		WHERE j.company_id = $1 AND l.account_id = $2
		  AND j.entry_date BETWEEN $3 AND $4
		  AND j.reference_type = 'period_closing'
		  AND ` + countableEntry + `;
	`
	var net decimal.Decimal
	if err := q.QueryRow(ctx, query, companyID, accountID, from, to).Scan(&net); err != nil {
		return decimal.Zero, apperrors.NewStorageError("failed to sum closing transfers for account "+accountID, err)
	}
	return net, nil
}

func (r *PgxLedgerRepository) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT journal_entry_id, company_id, reference_type, entry_date, description, status, is_deleted, deleted_at,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE journal_entry_id = $1;`, journalEntryID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query journal entry "+journalEntryID, err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to scan journal entry "+journalEntryID, err)
	}

	lineRows, err := r.Pool.Query(ctx, `
		SELECT line_id, journal_entry_id, account_id, debit_amount, credit_amount, description
		FROM journal_entry_lines
		WHERE journal_entry_id = $1
		ORDER BY line_no;`, journalEntryID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query lines of journal entry "+journalEntryID, err)
	}
	lines, err := pgx.CollectRows(lineRows, pgx.RowToStructByName[models.JournalEntryLine])
	if err != nil {
		return nil, apperrors.NewStorageError("failed to collect lines of journal entry "+journalEntryID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	entry.Lines = mapping.ToDomainJournalEntryLineSlice(lines)
	return &entry, nil
}

// DeleteJournalEntry hard-deletes an entry. journal_entry_lines cascades on the foreign key.
func (r *PgxLedgerRepository) DeleteJournalEntry(ctx context.Context, journalEntryID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM journal_entries WHERE journal_entry_id = $1;`, journalEntryID)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			// Still referenced by a committed period row.
			return apperrors.NewAppError(409, "journal entry "+journalEntryID+" is referenced by a period", err)
		}
		return apperrors.NewStorageError("failed to delete journal entry "+journalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
