package repositories

import (
	"context"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// AccountReader defines read operations against the chart of accounts
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindSystemAccount retrieves the active account of a company matching the query's code OR sub-type.
	// Returns apperrors.ErrNotFound when no active account matches.
	FindSystemAccount(ctx context.Context, companyID string, query domain.SystemAccountQuery) (*domain.Account, error)
}

// AccountWriter defines write operations against the chart of accounts
type AccountWriter interface {
	// CreateSystemAccount inserts a system account unless an active account with the same
	// (company_id, sub_type) already exists, and returns whichever row won.
	CreateSystemAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
