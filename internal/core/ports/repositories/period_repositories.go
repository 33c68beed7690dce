package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods
type PeriodReader interface {
	// FindPeriod retrieves the period with the exact (company, start, end) key. Returns apperrors.ErrNotFound when absent.
	FindPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error)

	// FindOverlappingPeriod returns a CLOSED or LOCKED period that overlaps [start, end] without
	// having exactly that key. Returns apperrors.ErrNotFound when there is none.
	FindOverlappingPeriod(ctx context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error)

	// FindPeriodByID retrieves a period by its ID.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// ListPeriods retrieves a page of a company's periods, newest first, using token-based pagination.
	ListPeriods(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.AccountingPeriod, *string, error)
}

// FiscalYearReader defines read operations for fiscal-year closings
type FiscalYearReader interface {
	// FindFiscalYearClosing retrieves the closing record of a fiscal year. Returns apperrors.ErrNotFound when absent.
	FindFiscalYearClosing(ctx context.Context, companyID string, fiscalYear int) (*domain.FiscalYearClosing, error)
}
