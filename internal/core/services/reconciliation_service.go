package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reconciliationService recomputes balances from scratch on every call.
type reconciliationService struct {
	BaseService
	ledgerRepo portsrepo.LedgerReader
}

func NewReconciliationService(ledgerRepo portsrepo.LedgerReader) portssvc.ReconciliationSvc {
	return &reconciliationService{ledgerRepo: ledgerRepo}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// AccountBalance is signed in the credit direction, which is the normal side of the equity accounts it serves.
func (s *reconciliationService) AccountBalance(ctx context.Context, account domain.Account, asOf time.Time) (decimal.Decimal, error) {
	debits, credits, err := s.ledgerRepo.SumAccountActivity(ctx, account.CompanyID, account.AccountID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: balance of account %s as of %s: %w",
			apperrors.ErrReconciliation, account.AccountID, asOf.Format(time.DateOnly), err)
	}
	return account.OpeningBalance.Add(credits.Sub(debits)), nil
}
