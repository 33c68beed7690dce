package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/SscSPs/closing_engine/internal/core/services"
	"github.com/SscSPs/closing_engine/internal/repositories/memory"
	"github.com/SscSPs/closing_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClosingServiceTestSuite struct {
	suite.Suite
	store   *memory.Store
	service portssvc.ClosingSvcFacade
	ctx     context.Context
}

func (suite *ClosingServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = newLedger(true)
	suite.service = suite.newService(services.DefaultClosingConfig())
}

func (suite *ClosingServiceTestSuite) newService(cfg services.ClosingConfig, opts ...services.ClosingServiceOption) portssvc.ClosingSvcFacade {
	container := services.NewServiceContainer(cfg, suite.store.Provider(),
		append([]services.ClosingServiceOption{services.WithClock(func() time.Time { return fixedNow })}, opts...)...)
	return container.Closing
}

func (suite *ClosingServiceTestSuite) closingEntries() []domain.JournalEntry {
	return suite.store.EntriesByReference(companyID, domain.RefPeriodClosing)
}

func (suite *ClosingServiceTestSuite) requireBalanced(entry domain.JournalEntry) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range entry.Lines {
		debits = debits.Add(l.DebitAmount)
		credits = credits.Add(l.CreditAmount)
	}
	suite.Require().True(debits.Equal(credits), "entry %s: debits %s, credits %s", entry.JournalEntryID, debits, credits)
}

func (suite *ClosingServiceTestSuite) incomeSummaryID() string {
	is, err := suite.store.FindSystemAccount(suite.ctx, companyID, domain.SystemAccountQuery{SubType: domain.SubTypeIncomeSummary})
	suite.Require().NoError(err)
	return is.AccountID
}

// interleavedService returns a service whose first closing transaction is preceded by before.
// before must run against another service, so it does not re-enter the wrapper.
func (suite *ClosingServiceTestSuite) interleavedService(before func()) portssvc.ClosingSvcFacade {
	repos := suite.store.Provider()
	repos.ClosingStore = &interleavingStore{ClosingStore: suite.store, before: before}
	return services.NewServiceContainer(services.DefaultClosingConfig(), repos,
		services.WithClock(func() time.Time { return fixedNow })).Closing
}

type interleavingStore struct {
	portsrepo.ClosingStore
	before func()
	once   sync.Once
}

func (s *interleavingStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.ClosingTx) error) error {
	s.once.Do(s.before)
	return s.ClosingStore.WithTx(ctx, fn)
}

// --- Scenarios ---

func (suite *ClosingServiceTestSuite) TestClosePeriod_Profit() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Equal(apperrors.OutcomeCommitted, result.Outcome)
	suite.True(dec("3000").Equal(result.NetIncome), "net income %s", result.NetIncome)
	suite.True(dec("3000").Equal(result.RetainedEarningsBalance))
	suite.Empty(result.Warnings)

	entries := suite.closingEntries()
	suite.Require().Len(entries, 1)
	suite.Equal(result.JournalEntryID, entries[0].JournalEntryID)
	suite.Equal(day(2026, 1, 31), entries[0].EntryDate)
	suite.Equal("Period closing: January 2026", entries[0].Description)
	suite.requireBalanced(entries[0])

	isID := suite.incomeSummaryID()
	suite.Require().Len(entries[0].Lines, 2)
	suite.Equal(isID, entries[0].Lines[0].AccountID)
	suite.True(dec("3000").Equal(entries[0].Lines[0].DebitAmount))
	suite.Equal(reID, entries[0].Lines[1].AccountID)
	suite.True(dec("3000").Equal(entries[0].Lines[1].CreditAmount))

	period, err := suite.service.GetPeriod(suite.ctx, companyID, result.PeriodID)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
	suite.Equal(closer, period.ClosedBy)
	suite.Equal(result.JournalEntryID, period.JournalEntryID)
	suite.Equal("January 2026", period.PeriodName)
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_Loss() {
	sale(suite.store, day(2026, 2, 3), "5000")
	spend(suite.store, day(2026, 2, 14), "8000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 2, 1), day(2026, 2, 28)))

	suite.Require().NoError(err)
	suite.True(dec("-3000").Equal(result.NetIncome))
	suite.True(dec("-3000").Equal(result.RetainedEarningsBalance))

	entries := suite.closingEntries()
	suite.Require().Len(entries, 1)
	suite.requireBalanced(entries[0])
	suite.Require().Len(entries[0].Lines, 2)
	suite.Equal(reID, entries[0].Lines[0].AccountID)
	suite.True(dec("3000").Equal(entries[0].Lines[0].DebitAmount))
	suite.Equal(suite.incomeSummaryID(), entries[0].Lines[1].AccountID)
	suite.True(dec("3000").Equal(entries[0].Lines[1].CreditAmount))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_SecondCallIsAlreadyClosed() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")
	req := periodRequest(day(2026, 1, 1), day(2026, 1, 31))

	_, err := suite.service.ClosePeriod(suite.ctx, req)
	suite.Require().NoError(err)

	result, err := suite.service.ClosePeriod(suite.ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.False(result.Success)
	suite.Equal(err, result.Err)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	suite.False(apperrors.NeedsOperator(err))
	suite.Len(suite.closingEntries(), 1)
	suite.Equal(1, suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_EmptyPeriodClosesWithoutEntry() {
	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 3, 1), day(2026, 3, 31)))

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.True(result.NetIncome.IsZero())
	suite.Empty(result.JournalEntryID)
	suite.Empty(suite.closingEntries())

	period, err := suite.service.GetPeriod(suite.ctx, companyID, result.PeriodID)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, period.Status)
	suite.Empty(period.JournalEntryID)
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_NetWithinEpsilonPostsNothing() {
	sale(suite.store, day(2026, 4, 2), "100.004")
	spend(suite.store, day(2026, 4, 3), "100")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 4, 1), day(2026, 4, 30)))

	suite.Require().NoError(err)
	suite.True(result.NetIncome.IsZero())
	suite.Empty(suite.closingEntries())
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_HalfCentNetPostsNothing() {
	sale(suite.store, day(2026, 1, 15), "0.005")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.True(result.NetIncome.IsZero(), "net income %s", result.NetIncome)
	suite.Empty(result.JournalEntryID)
	suite.Empty(suite.closingEntries())
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_ClosedPeriodWritesNothing() {
	suite.store.Load(memory.LedgerFile{Periods: []domain.AccountingPeriod{{
		PeriodID: "p-jan", CompanyID: companyID, PeriodName: "January 2026",
		PeriodStart: day(2026, 1, 1), PeriodEnd: day(2026, 1, 31), Status: domain.PeriodLocked,
	}}})
	sale(suite.store, day(2026, 1, 10), "10000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	_, err = suite.store.FindSystemAccount(suite.ctx, companyID, domain.SystemAccountQuery{SubType: domain.SubTypeIncomeSummary})
	suite.ErrorIs(err, apperrors.ErrNotFound, "income summary must not be created for a rejected close")
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_OverlappingClosedPeriodIsRejected() {
	sale(suite.store, day(2026, 1, 20), "1000")
	_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	answer, err := suite.service.CanClosePeriod(suite.ctx, companyID, day(2026, 1, 15), day(2026, 2, 15))
	suite.Require().NoError(err)
	suite.False(answer.CanClose)
	suite.Contains(answer.Reason, "overlaps")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 15), day(2026, 2, 15)))
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	suite.Len(suite.closingEntries(), 1)
	suite.True(dec("1000").Equal(balanceOf(suite.store, reID)))

	// adjacent periods share no day
	_, err = suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 2, 1), day(2026, 2, 28)))
	suite.NoError(err)
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_YearClosedAfterGuardIsRejected() {
	sale(suite.store, day(2026, 3, 10), "1000")
	racer := suite.service
	var yearErr error
	svc := suite.interleavedService(func() {
		_, yearErr = racer.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})
	})

	result, err := svc.ClosePeriod(suite.ctx, periodRequest(day(2026, 3, 1), day(2026, 3, 31)))

	suite.Require().NoError(yearErr)
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	suite.Empty(suite.closingEntries())
	suite.True(dec("1000").Equal(balanceOf(suite.store, reID)), "retained earnings %s", balanceOf(suite.store, reID))
}

func (suite *ClosingServiceTestSuite) TestCloseFiscalYear_CountsPeriodClosedAfterGuard() {
	sale(suite.store, day(2026, 3, 10), "1000")
	racer := suite.service
	var periodErr error
	svc := suite.interleavedService(func() {
		_, periodErr = racer.ClosePeriod(suite.ctx, periodRequest(day(2026, 3, 1), day(2026, 3, 31)))
	})

	result, err := svc.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})

	suite.Require().NoError(periodErr)
	suite.Require().NoError(err)
	suite.Empty(result.JournalEntryID, "the period close already moved the whole year")
	suite.Empty(suite.store.EntriesByReference(companyID, domain.RefFiscalYearClosing))
	suite.True(dec("1000").Equal(balanceOf(suite.store, reID)), "retained earnings %s", balanceOf(suite.store, reID))

	closing, err := suite.store.FindFiscalYearClosing(suite.ctx, companyID, 2026)
	suite.Require().NoError(err)
	suite.True(dec("1000").Equal(closing.TransferredAmount))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_MissingRetainedEarnings() {
	suite.store = newLedger(false)
	suite.service = suite.newService(services.DefaultClosingConfig())
	sale(suite.store, day(2026, 1, 10), "10000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConfiguration)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	suite.Empty(suite.closingEntries())
	suite.Zero(suite.store.PeriodCount(companyID))
	_, err = suite.store.FindSystemAccount(suite.ctx, companyID, domain.SystemAccountQuery{SubType: domain.SubTypeIncomeSummary})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_Validation() {
	tests := []struct {
		name string
		req  domain.ClosePeriodRequest
	}{
		{"start after end", periodRequest(day(2026, 2, 1), day(2026, 1, 31))},
		{"missing dates", domain.ClosePeriodRequest{CompanyID: companyID, ClosedBy: closer}},
		{"missing company", domain.ClosePeriodRequest{PeriodStart: day(2026, 1, 1), PeriodEnd: day(2026, 1, 31), ClosedBy: closer}},
		{"missing closer", domain.ClosePeriodRequest{CompanyID: companyID, PeriodStart: day(2026, 1, 1), PeriodEnd: day(2026, 1, 31)}},
		{"unknown company", domain.ClosePeriodRequest{CompanyID: "nope", PeriodStart: day(2026, 1, 1), PeriodEnd: day(2026, 1, 31), ClosedBy: closer}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			result, err := suite.service.ClosePeriod(suite.ctx, tt.req)
			suite.ErrorIs(err, apperrors.ErrValidation)
			suite.Require().NotNil(result)
			suite.False(result.Success)
			suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
		})
	}
	suite.Zero(suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_InactiveCompany() {
	suite.store.AddCompany(domain.Company{CompanyID: companyID, Name: "Acme", IsActive: false})

	_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Properties ---

func (suite *ClosingServiceTestSuite) TestClosePeriod_EveryEntryBalances() {
	amounts := []struct{ revenue, expense string }{
		{"10000", "7000"}, {"5000", "8000"}, {"1234.567", "0.001"}, {"0.015", "0"}, {"99.995", "100"},
	}
	for i, a := range amounts {
		month := time.Month(i + 1)
		start := day(2026, month, 1)
		end := start.AddDate(0, 1, -1)
		sale(suite.store, start.AddDate(0, 0, 1), a.revenue)
		spend(suite.store, start.AddDate(0, 0, 2), a.expense)

		_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(start, end))
		suite.Require().NoError(err)
	}
	for _, e := range suite.closingEntries() {
		suite.requireBalanced(e)
		suite.NoError(accounting.ValidateEntryBalance(e.Lines))
	}
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_ReconcilesRetainedEarnings() {
	// Earlier profit already sitting in retained earnings.
	post(suite.store, day(2025, 12, 31), line(equityRootID, "500", "0"), line(reID, "0", "500"))
	before := balanceOf(suite.store, reID)

	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	after := balanceOf(suite.store, reID)
	suite.True(before.Add(dec("3000")).Equal(after), "before %s after %s", before, after)
	suite.True(after.Equal(result.RetainedEarningsBalance))

	balance, err := services.NewReconciliationService(suite.store).AccountBalance(suite.ctx,
		account(reID, "3200", domain.Equity, domain.SubTypeRetainedEarnings), day(2026, 1, 31))
	suite.Require().NoError(err)
	suite.True(dec("3500").Equal(balance))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_FullModeZeroesIncomeSummary() {
	cfg := services.DefaultClosingConfig()
	cfg.Mode = accounting.ModeFull
	suite.service = suite.newService(cfg)

	sale(suite.store, day(2026, 1, 10), "6000")
	post(suite.store, day(2026, 1, 11), line(cashID, "4000", "0"), line(serviceRevID, "0", "4000"))
	spend(suite.store, day(2026, 1, 20), "7000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)
	suite.True(dec("3000").Equal(result.NetIncome))

	entries := suite.closingEntries()
	suite.Require().Len(entries, 1)
	suite.requireBalanced(entries[0])
	suite.True(balanceOf(suite.store, suite.incomeSummaryID()).IsZero())
	suite.True(balanceOf(suite.store, revenueID).IsZero())
	suite.True(balanceOf(suite.store, serviceRevID).IsZero())
	suite.True(balanceOf(suite.store, expenseID).IsZero())
	suite.True(dec("3000").Equal(balanceOf(suite.store, reID)))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_ConcurrentCallsCloseOnce() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")
	req := periodRequest(day(2026, 1, 1), day(2026, 1, 31))

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.ClosePeriod(suite.ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrAlreadyClosed):
				rejected++
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	suite.Equal(callers-1, rejected)
	suite.Len(suite.closingEntries(), 1)
	suite.Equal(1, suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_DifferentPeriodsInParallel() {
	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		start := day(2026, time.Month(i+1), 1)
		sale(suite.store, start.AddDate(0, 0, 4), "1000")
		wg.Add(1)
		go func(i int, start time.Time) {
			defer wg.Done()
			_, errs[i] = suite.service.ClosePeriod(suite.ctx, periodRequest(start, start.AddDate(0, 1, -1)))
		}(i, start)
	}
	wg.Wait()

	for _, err := range errs {
		suite.NoError(err)
	}
	suite.Len(suite.closingEntries(), 6)
	suite.True(dec("6000").Equal(balanceOf(suite.store, reID)))
}

// --- Write failures ---

func (suite *ClosingServiceTestSuite) TestClosePeriod_LineInsertFailureLeavesNoOrphan() {
	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultInsertLines, errors.New("connection reset"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.Equal(apperrors.OutcomeRolledBack, result.Outcome)
	suite.False(apperrors.NeedsOperator(err))
	suite.Empty(suite.closingEntries())
	suite.Zero(suite.store.PeriodCount(companyID))

	suite.store.InjectFault(memory.FaultInsertLines, nil)
	_, err = suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.NoError(err)
	suite.Len(suite.closingEntries(), 1)
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_HeaderInsertFailureWritesNothing() {
	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultInsertEntry, errors.New("timeout"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.Equal(apperrors.OutcomeNothingWritten, result.Outcome)
	suite.Zero(suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_MarkClosedFailureRollsBackEntry() {
	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultMarkPeriodClosed, errors.New("deadlock detected"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.Equal(apperrors.OutcomeRolledBack, result.Outcome)
	suite.Empty(suite.closingEntries())
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_RollbackFailureIsCompensated() {
	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultInsertLines, errors.New("connection reset"))
	suite.store.InjectFault(memory.FaultRollback, errors.New("connection lost"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.ErrorIs(err, apperrors.ErrRollbackFailed)
	suite.Equal(apperrors.OutcomeRolledBack, result.Outcome)
	suite.False(apperrors.NeedsOperator(err))
	suite.Empty(suite.closingEntries())

	// The period row survived the failed rollback still OPEN, so a retry goes through.
	suite.store.InjectFault(memory.FaultInsertLines, nil)
	suite.store.InjectFault(memory.FaultRollback, nil)
	_, err = suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.NoError(err)
	suite.Equal(1, suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_FailedCompensationNeedsOperator() {
	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultInsertLines, errors.New("connection reset"))
	suite.store.InjectFault(memory.FaultRollback, errors.New("connection lost"))
	suite.store.InjectFault(memory.FaultDeleteEntry, errors.New("connection lost"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Equal(apperrors.OutcomeRollbackFailed, result.Outcome)
	suite.True(apperrors.NeedsOperator(err))
	suite.Len(suite.closingEntries(), 1, "orphan entry left for manual reconciliation")
}

// --- Observers ---

func (suite *ClosingServiceTestSuite) TestClosePeriod_ReconciliationFailureIsAWarning() {
	recorder := new(MockRecorder)
	recorder.On("ObserveReconciliationWarning", domain.KindPeriod).Once()
	recorder.On("ObserveClose", domain.KindPeriod, "committed", mock.AnythingOfType("time.Duration")).Once()
	suite.service = suite.newService(services.DefaultClosingConfig(), services.WithClosingRecorder(recorder))

	sale(suite.store, day(2026, 1, 10), "10000")
	suite.store.InjectFault(memory.FaultSumActivity, errors.New("replica lag"))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.Require().Len(result.Warnings, 1)
	suite.Contains(result.Warnings[0], apperrors.ErrReconciliation.Error())
	suite.Len(suite.closingEntries(), 1)
	recorder.AssertExpectations(suite.T())
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_PublishesEvent() {
	publisher := new(MockPublisher)
	publisher.On("PublishClosed", mock.Anything, mock.MatchedBy(func(e domain.ClosingEvent) bool {
		return e.Kind == domain.KindPeriod && e.CompanyID == companyID && e.NetIncome.Equal(dec("3000")) && e.ClosedBy == closer
	})).Return(nil).Once()
	suite.service = suite.newService(services.DefaultClosingConfig(), services.WithEventPublisher(publisher))

	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().NoError(err)
	suite.Empty(result.Warnings)
	publisher.AssertExpectations(suite.T())
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_PublishFailureIsAWarning() {
	publisher := new(MockPublisher)
	publisher.On("PublishClosed", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
	suite.service = suite.newService(services.DefaultClosingConfig(), services.WithEventPublisher(publisher))

	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))

	suite.Require().NoError(err)
	suite.Require().Len(result.Warnings, 1)
	suite.Contains(result.Warnings[0], "redis down")
}

func (suite *ClosingServiceTestSuite) TestClosePeriod_RecordsRejections() {
	recorder := new(MockRecorder)
	recorder.On("ObserveClose", domain.KindPeriod, "committed", mock.Anything).Once()
	recorder.On("ObserveClose", domain.KindPeriod, "already_closed", mock.Anything).Once()
	suite.service = suite.newService(services.DefaultClosingConfig(), services.WithClosingRecorder(recorder))
	req := periodRequest(day(2026, 1, 1), day(2026, 1, 31))

	_, _ = suite.service.ClosePeriod(suite.ctx, req)
	_, _ = suite.service.ClosePeriod(suite.ctx, req)

	recorder.AssertExpectations(suite.T())
}

// --- Eligibility and preview ---

func (suite *ClosingServiceTestSuite) TestCanClosePeriod() {
	res, err := suite.service.CanClosePeriod(suite.ctx, companyID, day(2026, 1, 1), day(2026, 1, 31))
	suite.Require().NoError(err)
	suite.True(res.CanClose)

	res, err = suite.service.CanClosePeriod(suite.ctx, companyID, day(2026, 2, 1), day(2026, 1, 31))
	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrValidation)

	res, err = suite.service.CanClosePeriod(suite.ctx, "nope", day(2026, 1, 1), day(2026, 1, 31))
	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrValidation)

	_, err = suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	res, err = suite.service.CanClosePeriod(suite.ctx, companyID, day(2026, 1, 1), day(2026, 1, 31))
	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrAlreadyClosed)
	suite.NotEmpty(res.Reason)
}

func (suite *ClosingServiceTestSuite) TestCanClosePeriod_MissingRetainedEarnings() {
	suite.store = newLedger(false)
	suite.service = suite.newService(services.DefaultClosingConfig())

	res, err := suite.service.CanClosePeriod(suite.ctx, companyID, day(2026, 1, 1), day(2026, 1, 31))

	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrConfiguration)
	suite.Zero(suite.store.PeriodCount(companyID))
}

func (suite *ClosingServiceTestSuite) TestPreviewClose_WritesNothing() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")

	preview, err := suite.service.PreviewClose(suite.ctx, companyID, day(2026, 1, 1), day(2026, 1, 31))

	suite.Require().NoError(err)
	suite.True(preview.CanClose)
	suite.True(dec("10000").Equal(preview.TotalRevenue))
	suite.True(dec("7000").Equal(preview.TotalExpenses))
	suite.True(dec("3000").Equal(preview.NetIncome.NetIncome))
	suite.Equal(reID, preview.RetainedEarningsAccountID)
	suite.Len(preview.Lines, 2)
	suite.NoError(accounting.ValidateEntryBalance(preview.Lines))

	suite.Empty(suite.closingEntries())
	suite.Zero(suite.store.PeriodCount(companyID))
	_, err = suite.store.FindSystemAccount(suite.ctx, companyID, domain.SystemAccountQuery{SubType: domain.SubTypeIncomeSummary})
	suite.ErrorIs(err, apperrors.ErrNotFound, "preview must not create the income summary account")
}

func (suite *ClosingServiceTestSuite) TestPreviewClose_ClosedPeriod() {
	_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	preview, err := suite.service.PreviewClose(suite.ctx, companyID, day(2026, 1, 1), day(2026, 1, 31))

	suite.Require().NoError(err)
	suite.False(preview.CanClose)
	suite.NotEmpty(preview.Reason)
}

// --- Fiscal year ---

func (suite *ClosingServiceTestSuite) TestCloseFiscalYear_TransfersOnlyTheRemainder() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")
	sale(suite.store, day(2026, 2, 10), "5000")
	spend(suite.store, day(2026, 2, 20), "8000")
	sale(suite.store, day(2026, 3, 10), "1000")

	jan, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	result, err := suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})

	suite.Require().NoError(err)
	suite.True(result.Success)
	suite.NotEmpty(result.FiscalYearClosingID)
	suite.True(dec("1000").Equal(result.NetIncome), "year net income %s", result.NetIncome)
	suite.True(dec("1000").Equal(result.RetainedEarningsBalance), "retained earnings %s", result.RetainedEarningsBalance)

	yearEntries := suite.store.EntriesByReference(companyID, domain.RefFiscalYearClosing)
	suite.Require().Len(yearEntries, 1)
	suite.requireBalanced(yearEntries[0])
	suite.Equal(day(2026, 12, 31), yearEntries[0].EntryDate)
	suite.Equal(reID, yearEntries[0].Lines[0].AccountID)
	suite.True(dec("2000").Equal(yearEntries[0].Lines[0].DebitAmount))

	closing, err := suite.store.FindFiscalYearClosing(suite.ctx, companyID, 2026)
	suite.Require().NoError(err)
	suite.True(dec("3000").Equal(closing.TransferredAmount))
	suite.Equal(result.JournalEntryID, closing.JournalEntryID)

	period, err := suite.service.GetPeriod(suite.ctx, companyID, jan.PeriodID)
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodLocked, period.Status)

	// Nothing inside a closed year can be closed again.
	_, err = suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 3, 1), day(2026, 3, 31)))
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)

	_, err = suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)
}

func (suite *ClosingServiceTestSuite) TestCloseFiscalYear_FullyTransferredYearPostsNothing() {
	sale(suite.store, day(2026, 1, 10), "10000")
	spend(suite.store, day(2026, 1, 20), "7000")
	_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 12, 31)))
	suite.Require().NoError(err)

	result, err := suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})

	suite.Require().NoError(err)
	suite.Empty(result.JournalEntryID)
	suite.Empty(suite.store.EntriesByReference(companyID, domain.RefFiscalYearClosing))
	suite.True(dec("3000").Equal(result.RetainedEarningsBalance))
}

func (suite *ClosingServiceTestSuite) TestCloseFiscalYear_RollbackFailureAfterClaimNeedsOperator() {
	sale(suite.store, day(2026, 5, 10), "10000")
	suite.store.InjectFault(memory.FaultLockPeriodsInYear, errors.New("statement timeout"))
	suite.store.InjectFault(memory.FaultRollback, errors.New("connection lost"))

	result, err := suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})

	suite.Equal(apperrors.OutcomeRollbackFailed, result.Outcome)
	suite.True(apperrors.NeedsOperator(err))
	suite.Empty(suite.store.EntriesByReference(companyID, domain.RefFiscalYearClosing), "entry removed by compensation")
}

func (suite *ClosingServiceTestSuite) TestCloseFiscalYear_LockFailureRollsBack() {
	sale(suite.store, day(2026, 5, 10), "10000")
	suite.store.InjectFault(memory.FaultLockPeriodsInYear, errors.New("statement timeout"))

	result, err := suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2026, ClosedBy: closer})

	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.Equal(apperrors.OutcomeRolledBack, result.Outcome)
	_, err = suite.store.FindFiscalYearClosing(suite.ctx, companyID, 2026)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	can, err := suite.service.CanCloseFiscalYear(suite.ctx, companyID, 2026)
	suite.Require().NoError(err)
	suite.True(can.CanClose)
}

func (suite *ClosingServiceTestSuite) TestCanCloseFiscalYear() {
	res, err := suite.service.CanCloseFiscalYear(suite.ctx, companyID, 12)
	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrValidation)

	_, err = suite.service.CloseFiscalYear(suite.ctx, domain.CloseFiscalYearRequest{CompanyID: companyID, FiscalYear: 2025, ClosedBy: closer})
	suite.Require().NoError(err)

	res, err = suite.service.CanCloseFiscalYear(suite.ctx, companyID, 2025)
	suite.Require().NoError(err)
	suite.False(res.CanClose)
	suite.ErrorIs(res.Err, apperrors.ErrAlreadyClosed)
}

// --- Reads ---

func (suite *ClosingServiceTestSuite) TestListPeriods_Paginates() {
	for m := time.January; m <= time.March; m++ {
		start := day(2026, m, 1)
		_, err := suite.service.ClosePeriod(suite.ctx, periodRequest(start, start.AddDate(0, 1, -1)))
		suite.Require().NoError(err)
	}

	page, next, err := suite.service.ListPeriods(suite.ctx, companyID, 2, nil)
	suite.Require().NoError(err)
	suite.Require().Len(page, 2)
	suite.Equal(day(2026, 3, 1), page[0].PeriodStart)
	suite.Require().NotNil(next)

	page, next, err = suite.service.ListPeriods(suite.ctx, companyID, 2, next)
	suite.Require().NoError(err)
	suite.Require().Len(page, 1)
	suite.Equal(day(2026, 1, 1), page[0].PeriodStart)
	suite.Nil(next)
}

func (suite *ClosingServiceTestSuite) TestGetPeriod_OtherCompanyIsNotFound() {
	result, err := suite.service.ClosePeriod(suite.ctx, periodRequest(day(2026, 1, 1), day(2026, 1, 31)))
	suite.Require().NoError(err)

	_, err = suite.service.GetPeriod(suite.ctx, "company-2", result.PeriodID)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.GetPeriod(suite.ctx, companyID, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestClosingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClosingServiceTestSuite))
}
