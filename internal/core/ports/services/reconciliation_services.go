package services

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationSvc recomputes account balances from posted lines.
type ReconciliationSvc interface {
	// AccountBalance returns opening balance + Σ(credit − debit) over countable lines up to asOf.
	// Failures wrap apperrors.ErrReconciliation.
	AccountBalance(ctx context.Context, account domain.Account, asOf time.Time) (decimal.Decimal, error)
}
