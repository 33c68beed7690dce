package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx holds the write lock for the whole of fn, so transactions are serialized.
// Writes go straight to the maps; an error restores the snapshot taken on entry.
func (m *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.ClosingTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(ctx, &txView{store: m}); err != nil {
		if rbErr, ok := m.faults[FaultRollback]; ok {
			return errors.Join(err, fmt.Errorf("%w: %v", apperrors.ErrRollbackFailed, rbErr))
		}
		m.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	accounts    map[string]domain.Account
	entries     map[string]domain.JournalEntry
	periods     map[string]domain.AccountingPeriod
	fiscalYears map[string]domain.FiscalYearClosing
}

func (m *Store) snapshot() snapshot {
	entries := make(map[string]domain.JournalEntry, len(m.entries))
	for k, e := range m.entries {
		entries[k] = cloneEntry(e)
	}
	return snapshot{
		accounts:    maps.Clone(m.accounts),
		entries:     entries,
		periods:     maps.Clone(m.periods),
		fiscalYears: maps.Clone(m.fiscalYears),
	}
}

func (m *Store) restore(s snapshot) {
	m.accounts = s.accounts
	m.entries = s.entries
	m.periods = s.periods
	m.fiscalYears = s.fiscalYears
}

// txView runs under the lock already held by WithTx.
type txView struct {
	store *Store
}

var _ portsrepo.ClosingTx = (*txView)(nil)

// LockFiscalYears has nothing to do: WithTx already serializes every transaction.
func (tv *txView) LockFiscalYears(context.Context, string, int, int) error {
	return nil
}

func (tv *txView) FiscalYearClosed(_ context.Context, companyID string, fiscalYear int) (bool, error) {
	_, closed := tv.store.fiscalYears[fiscalYearKey(companyID, fiscalYear)]
	return closed, nil
}

func (tv *txView) FindOverlappingPeriod(_ context.Context, companyID string, start, end time.Time) (*domain.AccountingPeriod, error) {
	p, ok := tv.store.findOverlappingPeriodLocked(companyID, start, end)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (tv *txView) SumClosingTransfers(_ context.Context, companyID, accountID string, from, to time.Time) (decimal.Decimal, error) {
	return tv.store.sumClosingTransfersLocked(companyID, accountID, from, to), nil
}

func (tv *txView) LockPeriod(_ context.Context, period domain.AccountingPeriod) (*domain.AccountingPeriod, error) {
	if p, ok := tv.store.findPeriodLocked(period.CompanyID, period.PeriodStart, period.PeriodEnd); ok {
		return &p, nil
	}
	tv.store.periods[period.PeriodID] = period
	return &period, nil
}

func (tv *txView) MarkPeriodClosed(_ context.Context, period domain.AccountingPeriod) error {
	if err := tv.store.fault(FaultMarkPeriodClosed); err != nil {
		return err
	}
	current, ok := tv.store.periods[period.PeriodID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != domain.PeriodOpen {
		return apperrors.ErrAlreadyClosed
	}
	if period.Notes == "" {
		period.Notes = current.Notes
	}
	period.Status = domain.PeriodClosed
	period.CreatedAt = current.CreatedAt
	period.CreatedBy = current.CreatedBy
	tv.store.periods[period.PeriodID] = period
	return nil
}

func (tv *txView) InsertJournalEntry(_ context.Context, entry domain.JournalEntry) error {
	if err := tv.store.fault(FaultInsertEntry); err != nil {
		return err
	}
	if _, exists := tv.store.entries[entry.JournalEntryID]; exists {
		return apperrors.NewAppError(409, "journal entry "+entry.JournalEntryID+" already exists", apperrors.ErrDuplicate)
	}
	entry.Lines = nil
	tv.store.entries[entry.JournalEntryID] = entry
	return nil
}

func (tv *txView) InsertJournalEntryLines(_ context.Context, journalEntryID string, lines []domain.JournalEntryLine) error {
	if err := tv.store.fault(FaultInsertLines); err != nil {
		return err
	}
	entry, ok := tv.store.entries[journalEntryID]
	if !ok {
		return apperrors.NewStorageError("journal entry "+journalEntryID+" does not exist", apperrors.ErrNotFound)
	}
	for _, l := range lines {
		l.JournalEntryID = journalEntryID
		entry.Lines = append(entry.Lines, l)
	}
	tv.store.entries[journalEntryID] = entry
	return nil
}

func (tv *txView) ClaimFiscalYear(_ context.Context, closing domain.FiscalYearClosing) error {
	key := fiscalYearKey(closing.CompanyID, closing.FiscalYear)
	if _, exists := tv.store.fiscalYears[key]; exists {
		return apperrors.ErrAlreadyClosed
	}
	tv.store.fiscalYears[key] = closing
	return nil
}

func (tv *txView) AttachFiscalYearEntry(_ context.Context, fiscalYearClosingID, journalEntryID string) error {
	for k, fy := range tv.store.fiscalYears {
		if fy.FiscalYearClosingID == fiscalYearClosingID {
			fy.JournalEntryID = journalEntryID
			tv.store.fiscalYears[k] = fy
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (tv *txView) LockPeriodsInRange(_ context.Context, companyID string, from, to time.Time, lockedBy string, at time.Time) (int64, error) {
	if err := tv.store.fault(FaultLockPeriodsInYear); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range tv.store.periods {
		if p.CompanyID != companyID || p.Status == domain.PeriodLocked {
			continue
		}
		if p.PeriodStart.Before(from) || p.PeriodEnd.After(to) {
			continue
		}
		p.Status = domain.PeriodLocked
		p.LastUpdatedAt = at
		p.LastUpdatedBy = lockedBy
		tv.store.periods[id] = p
		n++
	}
	return n, nil
}
