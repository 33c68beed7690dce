package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/SscSPs/closing_engine/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	companyID    = "company-1"
	closer       = "user-1"
	equityRootID = "acc-equity"
	cashID       = "acc-cash"
	revenueID    = "acc-revenue"
	serviceRevID = "acc-service-revenue"
	expenseID    = "acc-expense"
	reID         = "acc-retained-earnings"
)

var fixedNow = time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func account(id, code string, t domain.AccountType, subType string) domain.Account {
	normal := domain.NormalCredit
	if t == domain.Asset || t == domain.Expense {
		normal = domain.NormalDebit
	}
	return domain.Account{
		AccountID:      id,
		CompanyID:      companyID,
		Code:           code,
		Name:           id,
		AccountType:    t,
		SubType:        subType,
		NormalBalance:  normal,
		OpeningBalance: decimal.Zero,
		IsActive:       true,
	}
}

// newLedger seeds a company with a small chart of accounts. withRE controls the Retained Earnings account.
func newLedger(withRE bool) *memory.Store {
	store := memory.NewStore()
	store.AddCompany(domain.Company{CompanyID: companyID, Name: "Acme", IsActive: true})
	store.AddAccount(account(cashID, "1000", domain.Asset, ""))
	store.AddAccount(account(equityRootID, "3000", domain.Equity, ""))
	store.AddAccount(account(revenueID, "4000", domain.Income, ""))
	store.AddAccount(account(serviceRevID, "4100", domain.Income, ""))
	store.AddAccount(account(expenseID, "5000", domain.Expense, ""))
	if withRE {
		re := account(reID, "3200", domain.Equity, domain.SubTypeRetainedEarnings)
		re.ParentAccountID = equityRootID
		store.AddAccount(re)
	}
	return store
}

func line(accountID, debit, credit string) domain.JournalEntryLine {
	return domain.JournalEntryLine{LineID: uuid.NewString(), AccountID: accountID, DebitAmount: dec(debit), CreditAmount: dec(credit)}
}

func post(store *memory.Store, date time.Time, lines ...domain.JournalEntryLine) string {
	id := uuid.NewString()
	store.PostEntry(domain.JournalEntry{
		JournalEntryID: id,
		CompanyID:      companyID,
		ReferenceType:  domain.RefManual,
		EntryDate:      date,
		Status:         domain.Posted,
		Lines:          lines,
	})
	return id
}

// sale posts a cash sale of amount on date.
func sale(store *memory.Store, date time.Time, amount string) {
	post(store, date, line(cashID, amount, "0"), line(revenueID, "0", amount))
}

// spend posts a cash expense of amount on date.
func spend(store *memory.Store, date time.Time, amount string) {
	post(store, date, line(expenseID, amount, "0"), line(cashID, "0", amount))
}

func balanceOf(store *memory.Store, accountID string) decimal.Decimal {
	debits, credits, err := store.SumAccountActivity(context.Background(), companyID, accountID, day(9999, 12, 31))
	if err != nil {
		panic(err)
	}
	return credits.Sub(debits)
}

func periodRequest(start, end time.Time) domain.ClosePeriodRequest {
	return domain.ClosePeriodRequest{CompanyID: companyID, PeriodStart: start, PeriodEnd: end, ClosedBy: closer}
}

// --- Mock observers ---

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveClose(kind domain.ClosingKind, outcome string, elapsed time.Duration) {
	m.Called(kind, outcome, elapsed)
}

func (m *MockRecorder) ObserveReconciliationWarning(kind domain.ClosingKind) {
	m.Called(kind)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishClosed(ctx context.Context, event domain.ClosingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
