package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// LedgerFile is the JSON form of a whole in-memory ledger.
type LedgerFile struct {
	Companies   []domain.Company           `json:"companies"`
	Accounts    []domain.Account           `json:"accounts"`
	Entries     []domain.JournalEntry      `json:"entries"`
	Periods     []domain.AccountingPeriod  `json:"periods,omitempty"`
	FiscalYears []domain.FiscalYearClosing `json:"fiscalYears,omitempty"`
}

// Load adds every record of f to the store, overwriting records with the same ID.
func (m *Store) Load(f LedgerFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range f.Companies {
		m.companies[c.CompanyID] = c
	}
	for _, a := range f.Accounts {
		m.accounts[a.AccountID] = a
	}
	for _, e := range f.Entries {
		m.entries[e.JournalEntryID] = cloneEntry(e)
	}
	for _, p := range f.Periods {
		m.periods[p.PeriodID] = p
	}
	for _, fy := range f.FiscalYears {
		m.fiscalYears[fiscalYearKey(fy.CompanyID, fy.FiscalYear)] = fy
	}
}

// Dump returns the store contents in a stable order.
func (m *Store) Dump() LedgerFile {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f := LedgerFile{
		Companies:   make([]domain.Company, 0, len(m.companies)),
		Accounts:    make([]domain.Account, 0, len(m.accounts)),
		Entries:     m.sortedEntriesLocked(),
		Periods:     make([]domain.AccountingPeriod, 0, len(m.periods)),
		FiscalYears: make([]domain.FiscalYearClosing, 0, len(m.fiscalYears)),
	}
	for _, c := range m.companies {
		f.Companies = append(f.Companies, c)
	}
	for _, a := range m.accounts {
		f.Accounts = append(f.Accounts, a)
	}
	for _, p := range m.periods {
		f.Periods = append(f.Periods, p)
	}
	for _, fy := range m.fiscalYears {
		f.FiscalYears = append(f.FiscalYears, fy)
	}
	for i := range f.Entries {
		f.Entries[i] = cloneEntry(f.Entries[i])
	}

	sort.Slice(f.Companies, func(i, j int) bool { return f.Companies[i].CompanyID < f.Companies[j].CompanyID })
	sort.Slice(f.Accounts, func(i, j int) bool { return f.Accounts[i].AccountID < f.Accounts[j].AccountID })
	sort.Slice(f.Periods, func(i, j int) bool { return f.Periods[i].PeriodStart.Before(f.Periods[j].PeriodStart) })
	sort.Slice(f.FiscalYears, func(i, j int) bool { return f.FiscalYears[i].FiscalYear < f.FiscalYears[j].FiscalYear })
	return f
}

// OpenLedgerFile builds a store from a ledger file on disk.
func OpenLedgerFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	var f LedgerFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse ledger file %s: %w", path, err)
	}
	store := NewStore()
	store.Load(f)
	return store, nil
}

// SaveLedgerFile writes the store contents to path.
func (m *Store) SaveLedgerFile(path string) error {
	raw, err := json.MarshalIndent(m.Dump(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	return nil
}
