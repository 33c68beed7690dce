package repositories

import (
	"context"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a company by its ID. Returns apperrors.ErrNotFound when absent.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}
