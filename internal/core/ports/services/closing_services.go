package services

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// PeriodCloserSvc closes accounting periods.
type PeriodCloserSvc interface {
	// ClosePeriod closes a period exactly once. The returned result is never nil; on failure
	// result.Err equals the returned error and apperrors.OutcomeOf(err) says how far the write got.
	ClosePeriod(ctx context.Context, req domain.ClosePeriodRequest) (*domain.ClosingResult, error)

	// CanClosePeriod reports whether a period can be closed without writing anything.
	// Business rejections come back in the result; the error is reserved for storage failures.
	CanClosePeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (*domain.CanCloseResult, error)

	// PreviewClose computes the net income and the closing lines a close would post.
	PreviewClose(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (*domain.ClosingPreview, error)
}

// FiscalYearCloserSvc closes whole fiscal years.
type FiscalYearCloserSvc interface {
	CloseFiscalYear(ctx context.Context, req domain.CloseFiscalYearRequest) (*domain.ClosingResult, error)
	CanCloseFiscalYear(ctx context.Context, companyID string, fiscalYear int) (*domain.CanCloseResult, error)
}

// PeriodReaderSvc reads accounting periods.
type PeriodReaderSvc interface {
	GetPeriod(ctx context.Context, companyID, periodID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.AccountingPeriod, *string, error)
}

// ClosingSvcFacade combines all closing-related service interfaces
type ClosingSvcFacade interface {
	PeriodCloserSvc
	FiscalYearCloserSvc
	PeriodReaderSvc
}
