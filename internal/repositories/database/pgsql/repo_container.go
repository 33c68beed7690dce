package pgsql

import (
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	periodRepo := newPgxPeriodRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CompanyRepo:    newPgxCompanyRepository(dbPool),
		AccountRepo:    newPgxAccountRepository(dbPool),
		LedgerRepo:     newPgxLedgerRepository(dbPool),
		PeriodRepo:     periodRepo,
		FiscalYearRepo: periodRepo,
		ClosingStore:   newPgxClosingStore(dbPool),
	}
}
