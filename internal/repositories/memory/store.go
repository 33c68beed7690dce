// Package memory provides an in-memory implementation of every repository port.
// It backs the closectl dry-run mode and the service tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/closing_engine/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// Fault names an operation that can be forced to fail.
type Fault string

const (
	FaultListPostedLines   Fault = "list_posted_lines"
	FaultSumActivity       Fault = "sum_activity"
	FaultInsertEntry       Fault = "insert_entry"
	FaultInsertLines       Fault = "insert_lines"
	FaultMarkPeriodClosed  Fault = "mark_period_closed"
	FaultLockPeriodsInYear Fault = "lock_periods_in_year"
	FaultRollback          Fault = "rollback"
	FaultDeleteEntry       Fault = "delete_entry"
)

// Store keeps a whole ledger in maps guarded by one RWMutex.
type Store struct {
	mu          sync.RWMutex
	companies   map[string]domain.Company
	accounts    map[string]domain.Account
	entries     map[string]domain.JournalEntry
	periods     map[string]domain.AccountingPeriod
	fiscalYears map[string]domain.FiscalYearClosing
	faults      map[Fault]error
}

func NewStore() *Store {
	return &Store{
		companies:   make(map[string]domain.Company),
		accounts:    make(map[string]domain.Account),
		entries:     make(map[string]domain.JournalEntry),
		periods:     make(map[string]domain.AccountingPeriod),
		fiscalYears: make(map[string]domain.FiscalYearClosing),
		faults:      make(map[Fault]error),
	}
}

var (
	_ portsrepo.CompanyReader           = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
	_ portsrepo.PeriodReader            = (*Store)(nil)
	_ portsrepo.FiscalYearReader        = (*Store)(nil)
	_ portsrepo.ClosingStore            = (*Store)(nil)
)

// Provider exposes the store through every repository port.
func (m *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:    m,
		AccountRepo:    m,
		LedgerRepo:     m,
		PeriodRepo:     m,
		FiscalYearRepo: m,
		ClosingStore:   m,
	}
}

// InjectFault makes the named operation return err until cleared with a nil err.
func (m *Store) InjectFault(f Fault, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, f)
		return
	}
	m.faults[f] = err
}

func (m *Store) fault(f Fault) error {
	if err, ok := m.faults[f]; ok {
		return apperrors.NewStorageError("injected "+string(f)+" failure", err)
	}
	return nil
}

// =============================================================================
// SEEDING
// =============================================================================

func (m *Store) AddCompany(c domain.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.CompanyID] = c
}

func (m *Store) AddAccount(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.AccountID] = a
}

// PostEntry stores an entry with its lines as-is.
func (m *Store) PostEntry(e domain.JournalEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.JournalEntryID] = cloneEntry(e)
}

// EntriesByReference returns the countable entries of a company with the given reference type.
func (m *Store) EntriesByReference(companyID string, ref domain.ReferenceType) []domain.JournalEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.JournalEntry
	for _, e := range m.entries {
		if e.CompanyID == companyID && e.ReferenceType == ref {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JournalEntryID < out[j].JournalEntryID })
	return out
}

// PeriodCount returns how many period rows a company has.
func (m *Store) PeriodCount(companyID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.periods {
		if p.CompanyID == companyID {
			n++
		}
	}
	return n
}

// =============================================================================
// READERS
// =============================================================================

func (m *Store) FindCompanyByID(_ context.Context, companyID string) (*domain.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[companyID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (m *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (m *Store) FindSystemAccount(_ context.Context, companyID string, query domain.SystemAccountQuery) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findSystemAccountLocked(companyID, query)
}

// findSystemAccountLocked matches active accounts by sub-type or code.
// More than one distinct match is ambiguous and reported as apperrors.ErrDuplicate.
func (m *Store) findSystemAccountLocked(companyID string, query domain.SystemAccountQuery) (*domain.Account, error) {
	var matches []domain.Account
	for _, a := range m.accounts {
		if a.CompanyID != companyID || !a.IsActive {
			continue
		}
		if (query.SubType != "" && a.SubType == query.SubType) || (query.Code != "" && a.Code == query.Code) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return nil, apperrors.ErrNotFound
	case 1:
		return &matches[0], nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].AccountID < matches[j].AccountID })
	return nil, ambiguousSystemAccount(query, matches[0].AccountID, matches[1].AccountID)
}

func ambiguousSystemAccount(query domain.SystemAccountQuery, first, second string) error {
	return apperrors.NewAppError(409,
		fmt.Sprintf("accounts %s and %s both match code %q / sub-type %q", first, second, query.Code, query.SubType),
		apperrors.ErrDuplicate)
}

func (m *Store) CreateSystemAccount(_ context.Context, account domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, err := m.findSystemAccountLocked(account.CompanyID, domain.SystemAccountQuery{SubType: account.SubType})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	for _, a := range m.accounts {
		if a.CompanyID == account.CompanyID && a.Code == account.Code {
			return nil, apperrors.NewAppError(409, "account code "+account.Code+" is already used in company "+account.CompanyID, apperrors.ErrDuplicate)
		}
	}
	m.accounts[account.AccountID] = account
	return &account, nil
}

func (m *Store) ListPostedLines(_ context.Context, companyID string, from, to time.Time) ([]domain.LedgerLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault(FaultListPostedLines); err != nil {
		return nil, err
	}

	result := []domain.LedgerLine{}
	for _, e := range m.sortedEntriesLocked() {
		if e.CompanyID != companyID || !e.Countable() || e.ReferenceType.IsClosing() {
			continue
		}
		if !onOrBetween(e.EntryDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			acc, ok := m.accounts[l.AccountID]
			if !ok || !acc.IsProfitAndLoss() {
				continue
			}
			result = append(result, domain.LedgerLine{
				AccountID:    l.AccountID,
				AccountType:  acc.AccountType,
				DebitAmount:  l.DebitAmount,
				CreditAmount: l.CreditAmount,
			})
		}
	}
	return result, nil
}

func (m *Store) SumAccountActivity(_ context.Context, companyID, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault(FaultSumActivity); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.CompanyID != companyID || !e.Countable() || domain.DateOnly(e.EntryDate).After(domain.DateOnly(asOf)) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debits = debits.Add(l.DebitAmount)
				credits = credits.Add(l.CreditAmount)
			}
		}
	}
	return debits, credits, nil
}

func (m *Store) sumClosingTransfersLocked(companyID, accountID string, from, to time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, e := range m.entries {
		if e.CompanyID != companyID || !e.Countable() || e.ReferenceType != domain.RefPeriodClosing {
			continue
		}
		if !onOrBetween(e.EntryDate, from, to) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				net = net.Add(l.CreditAmount).Sub(l.DebitAmount)
			}
		}
	}
	return net
}

func (m *Store) FindJournalEntryByID(_ context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[journalEntryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e = cloneEntry(e)
	return &e, nil
}

func (m *Store) DeleteJournalEntry(_ context.Context, journalEntryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault(FaultDeleteEntry); err != nil {
		return err
	}
	if _, ok := m.entries[journalEntryID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.entries, journalEntryID)
	return nil
}

func (m *Store) FindPeriod(_ context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.findPeriodLocked(companyID, start, end)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *Store) FindOverlappingPeriod(_ context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.findOverlappingPeriodLocked(companyID, start, end)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *Store) FindPeriodByID(_ context.Context, periodID string) (*domain.AccountingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[periodID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *Store) ListPeriods(_ context.Context, companyID string, limit int, nextToken *string) ([]domain.AccountingPeriod, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []domain.AccountingPeriod
	for _, p := range m.periods {
		if p.CompanyID == companyID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].PeriodStart.Equal(all[j].PeriodStart) {
			return all[i].PeriodStart.After(all[j].PeriodStart)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if nextToken != nil && *nextToken != "" {
		lastStart, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(apperrors.ErrValidation, err))
		}
		i := sort.Search(len(all), func(i int) bool {
			p := all[i]
			return p.PeriodStart.Before(lastStart) || (p.PeriodStart.Equal(lastStart) && p.CreatedAt.Before(lastCreatedAt))
		})
		all = all[i:]
	}

	var next *string
	if len(all) > limit {
		last := all[limit-1]
		token := pagination.EncodeToken(last.PeriodStart, last.CreatedAt)
		next = &token
		all = all[:limit]
	}
	return all, next, nil
}

func (m *Store) FindFiscalYearClosing(_ context.Context, companyID string, fiscalYear int) (*domain.FiscalYearClosing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fy, ok := m.fiscalYears[fiscalYearKey(companyID, fiscalYear)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &fy, nil
}

func (m *Store) findPeriodLocked(companyID string, start, end time.Time) (domain.AccountingPeriod, bool) {
	for _, p := range m.periods {
		if p.CompanyID == companyID && p.PeriodStart.Equal(start) && p.PeriodEnd.Equal(end) {
			return p, true
		}
	}
	return domain.AccountingPeriod{}, false
}

// findOverlappingPeriodLocked returns the earliest final period overlapping [start, end] with a different key.
func (m *Store) findOverlappingPeriodLocked(companyID string, start, end time.Time) (domain.AccountingPeriod, bool) {
	var (
		found domain.AccountingPeriod
		ok    bool
	)
	for _, p := range m.periods {
		if p.CompanyID != companyID || !p.IsFinal() {
			continue
		}
		if p.PeriodStart.Equal(start) && p.PeriodEnd.Equal(end) {
			continue
		}
		if p.PeriodStart.After(end) || p.PeriodEnd.Before(start) {
			continue
		}
		if !ok || p.PeriodStart.Before(found.PeriodStart) {
			found, ok = p, true
		}
	}
	return found, ok
}

func (m *Store) sortedEntriesLocked() []domain.JournalEntry {
	out := make([]domain.JournalEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].JournalEntryID < out[j].JournalEntryID
	})
	return out
}

// onOrBetween compares calendar days, so a time of day on the last day still counts.
func onOrBetween(t, from, to time.Time) bool {
	d := domain.DateOnly(t)
	return !d.Before(domain.DateOnly(from)) && !d.After(domain.DateOnly(to))
}

func fiscalYearKey(companyID string, fiscalYear int) string {
	return fmt.Sprintf("%s|%d", companyID, fiscalYear)
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalEntryLine(nil), e.Lines...)
	return e
}
