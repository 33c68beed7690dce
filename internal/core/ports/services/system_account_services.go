package services

import (
	"context"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// SystemAccountSvc locates the Retained Earnings and Income Summary accounts of a company.
type SystemAccountSvc interface {
	// Resolve returns both accounts, creating Income Summary if it does not exist yet.
	// A missing Retained Earnings account is an apperrors.ErrConfiguration.
	Resolve(ctx context.Context, companyID string) (*domain.SystemAccounts, error)

	// Lookup is Resolve without the write. IncomeSummary is zero-valued when absent.
	Lookup(ctx context.Context, companyID string) (*domain.SystemAccounts, error)
}
