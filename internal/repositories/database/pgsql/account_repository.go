package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/closing_engine/internal/models"
	"github.com/SscSPs/closing_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountSelect = `
SELECT
	account_id, company_id, code, name, account_type, sub_type, normal_balance, opening_balance,
	parent_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by
FROM accounts
`

func (r *PgxAccountRepository) findOne(ctx context.Context, filter string, args ...any) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, accountSelect+filter, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query accounts", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorageError("failed to scan account row", err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// FindAccountByID retrieves a specific account by its unique identifier.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, `WHERE account_id = $1;`, accountID)
}

// FindSystemAccount matches active accounts by sub-type or code.
// Two distinct matches are ambiguous and reported as apperrors.ErrDuplicate.
func (r *PgxAccountRepository) FindSystemAccount(ctx context.Context, companyID string, query domain.SystemAccountQuery) (*domain.Account, error) {
	if query.Code == "" && query.SubType == "" {
		return nil, apperrors.NewValidationError("system account query needs a code or a sub-type")
	}
	rows, err := r.Pool.Query(ctx, accountSelect+`
		WHERE company_id = $1 AND is_active = TRUE
		  AND (($2::text <> '' AND sub_type = $2::text) OR ($3::text <> '' AND code = $3::text))
		ORDER BY account_id
		LIMIT 2;`,
		companyID, query.SubType, query.Code)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query system account", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, apperrors.NewStorageError("failed to scan system account rows", err)
	}
	switch len(ms) {
	case 0:
		return nil, apperrors.ErrNotFound
	case 1:
		account := mapping.ToDomainAccount(ms[0])
		return &account, nil
	}
	return nil, apperrors.NewAppError(409,
		fmt.Sprintf("accounts %s and %s both match code %q / sub-type %q", ms[0].AccountID, ms[1].AccountID, query.Code, query.SubType),
		apperrors.ErrDuplicate)
}

// CreateSystemAccount relies on the partial unique index uq_accounts_company_sub_type.
// The loser of a concurrent insert reads back the winner's row.
func (r *PgxAccountRepository) CreateSystemAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (
			account_id, company_id, code, name, account_type, sub_type, normal_balance, opening_balance,
			parent_account_id, is_active, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (company_id, sub_type) WHERE is_active AND sub_type IS NOT NULL DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID, m.CompanyID, m.Code, m.Name, m.AccountType, m.SubType, m.NormalBalance, m.OpeningBalance,
		m.ParentAccountID, m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			// Code collision with an unrelated account.
			return nil, apperrors.NewAppError(409, "account code "+account.Code+" is already used in company "+account.CompanyID, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorageError("failed to create system account "+account.SubType, err)
	}

	return r.findOne(ctx, `WHERE company_id = $1 AND sub_type = $2 AND is_active = TRUE;`, account.CompanyID, account.SubType)
}
