package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/SscSPs/closing_engine/internal/core/services"
	"github.com/SscSPs/closing_engine/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemAccountService_ResolveCreatesIncomeSummaryOnce(t *testing.T) {
	ctx := context.Background()
	store := newLedger(true)
	svc := services.NewSystemAccountService(store, services.DefaultClosingConfig())

	first, err := svc.Resolve(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, reID, first.RetainedEarnings.AccountID)

	is := first.IncomeSummary
	assert.NotEmpty(t, is.AccountID)
	assert.Equal(t, "3300", is.Code)
	assert.Equal(t, domain.Equity, is.AccountType)
	assert.Equal(t, domain.NormalCredit, is.NormalBalance)
	assert.Equal(t, domain.SubTypeIncomeSummary, is.SubType)
	assert.Equal(t, equityRootID, is.ParentAccountID)
	assert.True(t, is.OpeningBalance.IsZero())
	assert.True(t, is.IsActive)

	second, err := svc.Resolve(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, is.AccountID, second.IncomeSummary.AccountID)
}

func TestSystemAccountService_FindsByCodeWithoutTag(t *testing.T) {
	store := newLedger(false)
	store.AddAccount(account("legacy-re", "3200", domain.Equity, ""))
	store.AddAccount(account("legacy-is", "3300", domain.Equity, ""))
	svc := services.NewSystemAccountService(store, services.DefaultClosingConfig())

	accounts, err := svc.Resolve(context.Background(), companyID)

	require.NoError(t, err)
	assert.Equal(t, "legacy-re", accounts.RetainedEarnings.AccountID)
	assert.Equal(t, "legacy-is", accounts.IncomeSummary.AccountID)
}

func TestSystemAccountService_Misconfiguration(t *testing.T) {
	tests := []struct {
		name string
		seed func(store *memory.Store)
	}{
		{
			name: "no retained earnings",
			seed: func(store *memory.Store) {},
		},
		{
			name: "inactive retained earnings",
			seed: func(store *memory.Store) {
				re := account(reID, "3200", domain.Equity, domain.SubTypeRetainedEarnings)
				re.IsActive = false
				store.AddAccount(re)
			},
		},
		{
			name: "retained earnings is not equity",
			seed: func(store *memory.Store) {
				store.AddAccount(account(reID, "3200", domain.Liability, domain.SubTypeRetainedEarnings))
			},
		},
		{
			name: "tagged account and code 3200 are different accounts",
			seed: func(store *memory.Store) {
				store.AddAccount(account(reID, "3900", domain.Equity, domain.SubTypeRetainedEarnings))
				store.AddAccount(account("legacy-re", "3200", domain.Equity, ""))
			},
		},
		{
			name: "income summary code held by an asset",
			seed: func(store *memory.Store) {
				store.AddAccount(account(reID, "3200", domain.Equity, domain.SubTypeRetainedEarnings))
				store.AddAccount(account("petty-cash", "3300", domain.Asset, ""))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newLedger(false)
			tt.seed(store)
			svc := services.NewSystemAccountService(store, services.DefaultClosingConfig())

			_, err := svc.Resolve(context.Background(), companyID)

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, 422, appErr.Code)
		})
	}
}

func TestSystemAccountService_CustomCodes(t *testing.T) {
	store := newLedger(false)
	store.AddAccount(account("re-39", "3900", domain.Equity, ""))
	cfg := services.DefaultClosingConfig()
	cfg.RetainedEarningsCode = "3900"
	cfg.IncomeSummaryCode = "3950"
	svc := services.NewSystemAccountService(store, cfg)

	accounts, err := svc.Resolve(context.Background(), companyID)

	require.NoError(t, err)
	assert.Equal(t, "re-39", accounts.RetainedEarnings.AccountID)
	assert.Equal(t, "3950", accounts.IncomeSummary.Code)
}

func TestSystemAccountService_LookupNeverCreates(t *testing.T) {
	ctx := context.Background()
	store := newLedger(true)
	svc := services.NewSystemAccountService(store, services.DefaultClosingConfig())

	accounts, err := svc.Lookup(ctx, companyID)

	require.NoError(t, err)
	assert.Equal(t, reID, accounts.RetainedEarnings.AccountID)
	assert.Empty(t, accounts.IncomeSummary.AccountID)
	_, err = store.FindSystemAccount(ctx, companyID, domain.SystemAccountQuery{SubType: domain.SubTypeIncomeSummary})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
