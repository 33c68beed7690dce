package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/closing_engine/internal/models"
	"github.com/SscSPs/closing_engine/internal/utils/mapping"
	"github.com/SscSPs/closing_engine/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var (
	_ portsrepo.PeriodReader     = (*PgxPeriodRepository)(nil)
	_ portsrepo.FiscalYearReader = (*PgxPeriodRepository)(nil)
)

const periodColumns = `
	period_id, company_id, period_name, period_start, period_end, status, closed_by, closed_at,
	journal_entry_id, notes, created_at, created_by, last_updated_at, last_updated_by
`

const fiscalYearColumns = `
	fiscal_year_closing_id, company_id, fiscal_year, closing_date, total_revenue, total_expenses, net_income,
	transferred_amount, journal_entry_id, status, closed_by, notes,
	created_at, created_by, last_updated_at, last_updated_by
`

// queryPeriods runs a period query on any pgx querier (pool or transaction).
func queryPeriods(ctx context.Context, q interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}, filter string, args ...any) ([]domain.AccountingPeriod, error) {
	rows, err := q.Query(ctx, "SELECT "+periodColumns+" FROM accounting_periods "+filter, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query accounting periods", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AccountingPeriod])
	if err != nil {
		return nil, apperrors.NewStorageError("failed to collect accounting period rows", err)
	}
	return mapping.ToDomainAccountingPeriodSlice(ms), nil
}

func (r *PgxPeriodRepository) FindPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	periods, err := queryPeriods(ctx, r.Pool, `WHERE company_id = $1 AND period_start = $2 AND period_end = $3;`, companyID, start, end)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &periods[0], nil
}

// findOverlappingPeriod returns the earliest final period overlapping [start, end] with a different key.
func findOverlappingPeriod(ctx context.Context, q interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	periods, err := queryPeriods(ctx, q, `
		WHERE company_id = $1 AND status <> 'OPEN'
		  AND period_start <= $3 AND period_end >= $2
		  AND NOT (period_start = $2 AND period_end = $3)
		ORDER BY period_start
		LIMIT 1;`, companyID, start, end)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &periods[0], nil
}

func (r *PgxPeriodRepository) FindOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	return findOverlappingPeriod(ctx, r.Pool, companyID, start, end)
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	periods, err := queryPeriods(ctx, r.Pool, `WHERE period_id = $1;`, periodID)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &periods[0], nil
}

// ListPeriods pages newest first on (period_start, created_at).
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.AccountingPeriod, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells us whether a next page exists.
	fetchLimit := limit + 1

	filter := `WHERE company_id = $1`
	args := []any{companyID}
	if nextToken != nil && *nextToken != "" {
		lastStart, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(apperrors.ErrValidation, decodeErr))
		}
		filter += ` AND (period_start, created_at) < ($2, $3)`
		args = append(args, lastStart, lastCreatedAt)
	}
	filter += ` ORDER BY period_start DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	periods, err := queryPeriods(ctx, r.Pool, filter, args...)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(periods) > limit {
		last := periods[limit-1]
		token := pagination.EncodeToken(last.PeriodStart, last.CreatedAt)
		next = &token
		periods = periods[:limit]
	}
	return periods, next, nil
}

func (r *PgxPeriodRepository) FindFiscalYearClosing(ctx context.Context, companyID string, fiscalYear int) (*domain.FiscalYearClosing, error) {
	rows, err := r.Pool.Query(ctx, "SELECT "+fiscalYearColumns+" FROM fiscal_year_closings WHERE company_id = $1 AND fiscal_year = $2;", companyID, fiscalYear)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query fiscal year closing", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.FiscalYearClosing])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to scan fiscal year closing", err)
	}
	fy := mapping.ToDomainFiscalYearClosing(m)
	return &fy, nil
}
