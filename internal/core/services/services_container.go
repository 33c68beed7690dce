package services

import (
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg ClosingConfig, repos portsrepo.RepositoryProvider, options ...ClosingServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// System accounts and reconciliation first since the closing engine depends on them
	container.SystemAccounts = NewSystemAccountService(repos.AccountRepo, cfg)
	container.Reconciliation = NewReconciliationService(repos.LedgerRepo)

	container.Closing = NewClosingService(repos, container.SystemAccounts, container.Reconciliation, cfg, options...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ClosingSvcFacade  = (*closingService)(nil)
	_ portssvc.SystemAccountSvc  = (*systemAccountService)(nil)
	_ portssvc.ReconciliationSvc = (*reconciliationService)(nil)
)
