package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// systemAccountService finds the equity accounts a closing entry posts to.
type systemAccountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	cfg         ClosingConfig
	now         func() time.Time
}

// SystemAccountServiceOption is a functional option for configuring the system account service
type SystemAccountServiceOption func(*systemAccountService)

// WithSystemAccountClock overrides the clock used for audit timestamps.
func WithSystemAccountClock(now func() time.Time) SystemAccountServiceOption {
	return func(s *systemAccountService) {
		s.now = now
	}
}

// NewSystemAccountService creates a new system account resolver.
func NewSystemAccountService(accountRepo portsrepo.AccountRepositoryFacade, cfg ClosingConfig, options ...SystemAccountServiceOption) portssvc.SystemAccountSvc {
	svc := &systemAccountService{
		accountRepo: accountRepo,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SystemAccountSvc = (*systemAccountService)(nil)

func (s *systemAccountService) Resolve(ctx context.Context, companyID string) (*domain.SystemAccounts, error) {
	re, err := s.retainedEarnings(ctx, companyID)
	if err != nil {
		return nil, err
	}

	is, err := s.findIncomeSummary(ctx, companyID)
	if errors.Is(err, apperrors.ErrNotFound) {
		is, err = s.createIncomeSummary(ctx, companyID, re)
	}
	if err != nil {
		return nil, err
	}
	if err := requireEquity(is, "income summary"); err != nil {
		return nil, err
	}

	return &domain.SystemAccounts{RetainedEarnings: *re, IncomeSummary: *is}, nil
}

func (s *systemAccountService) Lookup(ctx context.Context, companyID string) (*domain.SystemAccounts, error) {
	re, err := s.retainedEarnings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	accounts := &domain.SystemAccounts{RetainedEarnings: *re}

	is, err := s.findIncomeSummary(ctx, companyID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return accounts, nil
	case err != nil:
		return nil, err
	}
	if err := requireEquity(is, "income summary"); err != nil {
		return nil, err
	}
	accounts.IncomeSummary = *is
	return accounts, nil
}

// retainedEarnings is never created: its code is a business convention the company must set up.
func (s *systemAccountService) retainedEarnings(ctx context.Context, companyID string) (*domain.Account, error) {
	re, err := s.accountRepo.FindSystemAccount(ctx, companyID, domain.SystemAccountQuery{
		Code:    s.cfg.RetainedEarningsCode,
		SubType: domain.SubTypeRetainedEarnings,
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		s.LogWarn(ctx, "Retained earnings account missing", slog.String("company_id", companyID))
		return nil, apperrors.NewAppError(422,
			fmt.Sprintf("no active retained earnings account (code %s or sub-type %s) in company %s",
				s.cfg.RetainedEarningsCode, domain.SubTypeRetainedEarnings, companyID),
			apperrors.ErrConfiguration)
	}
	if errors.Is(err, apperrors.ErrDuplicate) {
		return nil, ambiguousAccount(err, "retained earnings")
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to look up retained earnings account", slog.String("company_id", companyID))
		return nil, err
	}
	if err := requireEquity(re, "retained earnings"); err != nil {
		return nil, err
	}
	return re, nil
}

func (s *systemAccountService) findIncomeSummary(ctx context.Context, companyID string) (*domain.Account, error) {
	is, err := s.accountRepo.FindSystemAccount(ctx, companyID, domain.SystemAccountQuery{
		Code:    s.cfg.IncomeSummaryCode,
		SubType: domain.SubTypeIncomeSummary,
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		return nil, ambiguousAccount(err, "income summary")
	}
	return is, err
}

// createIncomeSummary places the account next to Retained Earnings under the same equity parent.
func (s *systemAccountService) createIncomeSummary(ctx context.Context, companyID string, re *domain.Account) (*domain.Account, error) {
	now := s.now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		CompanyID:       companyID,
		Code:            s.cfg.IncomeSummaryCode,
		Name:            "Income Summary",
		AccountType:     domain.Equity,
		SubType:         domain.SubTypeIncomeSummary,
		NormalBalance:   domain.NormalCredit,
		OpeningBalance:  decimal.Zero,
		ParentAccountID: re.ParentAccountID,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(domain.SystemUser, now),
	}

	created, err := s.accountRepo.CreateSystemAccount(ctx, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewAppError(422,
				"account code "+s.cfg.IncomeSummaryCode+" is taken by an account that is not an active income summary",
				errors.Join(apperrors.ErrConfiguration, err))
		}
		s.LogError(ctx, err, "Failed to create income summary account", slog.String("company_id", companyID))
		return nil, err
	}

	if created.AccountID == account.AccountID {
		s.LogInfo(ctx, "Income summary account created",
			slog.String("company_id", companyID),
			slog.String("account_id", created.AccountID))
	}
	return created, nil
}

func ambiguousAccount(err error, role string) error {
	return apperrors.NewAppError(422, "more than one active account qualifies as "+role+": "+err.Error(),
		errors.Join(apperrors.ErrConfiguration, err))
}

func requireEquity(a *domain.Account, role string) error {
	if a.AccountType != domain.Equity {
		return apperrors.NewAppError(422,
			fmt.Sprintf("%s account %s must be EQUITY, found %s", role, a.Code, a.AccountType),
			apperrors.ErrConfiguration)
	}
	return nil
}
