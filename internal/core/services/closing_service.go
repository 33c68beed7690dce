package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/closing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/SscSPs/closing_engine/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPeriodPageSize = 20
	maxPeriodPageSize     = 100
	minFiscalYear         = 1900
	maxFiscalYear         = 9999
)

// closingService runs period and fiscal-year closes:
// gateway -> calculator -> resolver -> guard -> composer -> coordinator -> reconciliation.
type closingService struct {
	BaseService
	companyRepo    portsrepo.CompanyReader
	ledgerRepo     portsrepo.LedgerReader
	periodRepo     portsrepo.PeriodReader
	fiscalYearRepo portsrepo.FiscalYearReader
	accounts       portssvc.SystemAccountSvc
	reconciler     portssvc.ReconciliationSvc
	publisher      portssvc.ClosingEventPublisher
	recorder       portssvc.ClosingRecorder
	coordinator    *closingCoordinator
	cfg            ClosingConfig
	now            func() time.Time
}

// ClosingServiceOption is a functional option for configuring the closing service
type ClosingServiceOption func(*closingService)

// WithEventPublisher announces committed closes through publisher.
func WithEventPublisher(publisher portssvc.ClosingEventPublisher) ClosingServiceOption {
	return func(s *closingService) {
		s.publisher = publisher
	}
}

// WithClosingRecorder reports closing telemetry to recorder.
func WithClosingRecorder(recorder portssvc.ClosingRecorder) ClosingServiceOption {
	return func(s *closingService) {
		s.recorder = recorder
	}
}

// WithClock overrides time.Now for closing timestamps.
func WithClock(now func() time.Time) ClosingServiceOption {
	return func(s *closingService) {
		s.now = now
		s.coordinator.now = now
	}
}

// WithIDGenerator overrides uuid generation for new rows.
func WithIDGenerator(newID func() string) ClosingServiceOption {
	return func(s *closingService) {
		s.coordinator.newID = newID
	}
}

// NewClosingService creates the closing engine on top of the repositories in repos.
func NewClosingService(repos portsrepo.RepositoryProvider, accounts portssvc.SystemAccountSvc, reconciler portssvc.ReconciliationSvc, cfg ClosingConfig, options ...ClosingServiceOption) portssvc.ClosingSvcFacade {
	cfg = cfg.withDefaults()
	svc := &closingService{
		companyRepo:    repos.CompanyRepo,
		ledgerRepo:     repos.LedgerRepo,
		periodRepo:     repos.PeriodRepo,
		fiscalYearRepo: repos.FiscalYearRepo,
		accounts:       accounts,
		reconciler:     reconciler,
		coordinator: &closingCoordinator{
			store:        repos.ClosingStore,
			ledgerWriter: repos.LedgerRepo,
			writeTimeout: cfg.WriteTimeout,
			now:          time.Now,
			newID:        uuid.NewString,
		},
		cfg: cfg,
		now: time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ClosingSvcFacade = (*closingService)(nil)

// =============================================================================
// PERIOD CLOSING
// =============================================================================

func (s *closingService) ClosePeriod(ctx context.Context, req domain.ClosePeriodRequest) (*domain.ClosingResult, error) {
	started := time.Now()
	result, err := s.closePeriod(ctx, req)
	s.observe(domain.KindPeriod, err, time.Since(started))
	return result, err
}

func (s *closingService) closePeriod(ctx context.Context, req domain.ClosePeriodRequest) (*domain.ClosingResult, error) {
	req, err := normalizePeriodRequest(req)
	if err != nil {
		return closingFailure(err)
	}
	attrs := []any{
		slog.String("company_id", req.CompanyID),
		slog.String("period_start", req.PeriodStart.Format(time.DateOnly)),
		slog.String("period_end", req.PeriodEnd.Format(time.DateOnly)),
	}

	if err := s.requireCompany(ctx, req.CompanyID); err != nil {
		return closingFailure(err)
	}
	// Before Resolve, which may create the Income Summary account.
	if err := s.guardPeriod(ctx, req.CompanyID, req.PeriodStart, req.PeriodEnd); err != nil {
		return closingFailure(err)
	}

	lines, err := s.ledgerRepo.ListPostedLines(ctx, req.CompanyID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to read posted lines", attrs...)
		return closingFailure(err)
	}
	income := accounting.CalculateNetIncome(lines)

	accounts, err := s.accounts.Resolve(ctx, req.CompanyID)
	if err != nil {
		return closingFailure(err)
	}

	closingLines := accounting.ComposeClosingLines(income, *accounts, s.composeOptions(s.cfg.Mode))
	if len(closingLines) > 0 {
		if err := accounting.ValidateEntryBalance(closingLines); err != nil {
			s.LogError(ctx, err, "Composed closing entry does not balance", attrs...)
			return closingFailure(apperrors.NewAppError(500, "composed closing entry is invalid", err))
		}
	}

	firstYear, lastYear := s.fiscalYearsOf(req.PeriodStart, req.PeriodEnd)
	period, err := s.coordinator.commitPeriod(ctx, req, firstYear, lastYear, closingLines)
	if err != nil {
		return closingFailure(err)
	}

	net := s.reportedNet(income.NetIncome)
	result := &domain.ClosingResult{
		Success:        true,
		Outcome:        apperrors.OutcomeCommitted,
		JournalEntryID: period.JournalEntryID,
		PeriodID:       period.PeriodID,
		NetIncome:      net,
		Warnings:       []string{},
	}
	s.LogInfo(ctx, "Period closed", append(attrs,
		slog.String("period_id", period.PeriodID),
		slog.String("journal_entry_id", period.JournalEntryID),
		slog.String("net_income", net.String()))...)

	s.reconcile(ctx, domain.KindPeriod, result, accounts.RetainedEarnings, req.PeriodEnd)
	s.publish(ctx, result, domain.ClosingEvent{
		Kind:           domain.KindPeriod,
		CompanyID:      req.CompanyID,
		PeriodID:       period.PeriodID,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		JournalEntryID: period.JournalEntryID,
		NetIncome:      net,
		ClosedBy:       req.ClosedBy,
		OccurredAt:     s.now(),
	})
	return result, nil
}

func (s *closingService) CanClosePeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (*domain.CanCloseResult, error) {
	companyID, periodStart, periodEnd, err := normalizeRange(companyID, periodStart, periodEnd)
	if err == nil {
		err = s.requireCompany(ctx, companyID)
	}
	if err == nil {
		_, err = s.accounts.Lookup(ctx, companyID)
	}
	if err == nil {
		err = s.guardPeriod(ctx, companyID, periodStart, periodEnd)
	}
	return canCloseAnswer(err)
}

func (s *closingService) PreviewClose(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (*domain.ClosingPreview, error) {
	companyID, periodStart, periodEnd, err := normalizeRange(companyID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if err := s.requireCompany(ctx, companyID); err != nil {
		return nil, err
	}

	lines, err := s.ledgerRepo.ListPostedLines(ctx, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	income := accounting.CalculateNetIncome(lines)

	accounts, err := s.accounts.Lookup(ctx, companyID)
	if err != nil {
		return nil, err
	}

	preview := &domain.ClosingPreview{
		NetIncome:                 income,
		RetainedEarningsAccountID: accounts.RetainedEarnings.AccountID,
		IncomeSummaryAccountID:    accounts.IncomeSummary.AccountID,
		Lines:                     accounting.ComposeClosingLines(income, *accounts, s.composeOptions(s.cfg.Mode)),
		CanClose:                  true,
	}
	if preview.Lines == nil {
		preview.Lines = []domain.JournalEntryLine{}
	}

	if err := s.guardPeriod(ctx, companyID, periodStart, periodEnd); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyClosed) {
			return nil, err
		}
		preview.CanClose = false
		preview.Reason = err.Error()
	}
	return preview, nil
}

// =============================================================================
// FISCAL-YEAR CLOSING
// =============================================================================

func (s *closingService) CloseFiscalYear(ctx context.Context, req domain.CloseFiscalYearRequest) (*domain.ClosingResult, error) {
	started := time.Now()
	result, err := s.closeFiscalYear(ctx, req)
	s.observe(domain.KindFiscalYear, err, time.Since(started))
	return result, err
}

func (s *closingService) closeFiscalYear(ctx context.Context, req domain.CloseFiscalYearRequest) (*domain.ClosingResult, error) {
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.ClosedBy = strings.TrimSpace(req.ClosedBy)
	if err := validateFiscalYear(req.CompanyID, req.FiscalYear); err != nil {
		return closingFailure(err)
	}
	if req.ClosedBy == "" {
		return closingFailure(apperrors.NewValidationError("closed by is required"))
	}
	attrs := []any{slog.String("company_id", req.CompanyID), slog.Int("fiscal_year", req.FiscalYear)}

	if err := s.requireCompany(ctx, req.CompanyID); err != nil {
		return closingFailure(err)
	}
	if err := s.guardFiscalYear(ctx, req.CompanyID, req.FiscalYear); err != nil {
		return closingFailure(err)
	}

	yearStart, yearEnd := domain.FiscalYearBounds(req.FiscalYear, s.cfg.FiscalYearStartMonth)
	lines, err := s.ledgerRepo.ListPostedLines(ctx, req.CompanyID, yearStart, yearEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to read posted lines", attrs...)
		return closingFailure(err)
	}
	income := accounting.CalculateNetIncome(lines)

	accounts, err := s.accounts.Resolve(ctx, req.CompanyID)
	if err != nil {
		return closingFailure(err)
	}

	// Period closes inside the year already moved part of the result; the coordinator sums them under the fiscal-year lock.
	composeRemainder := func(transferred decimal.Decimal) []domain.JournalEntryLine {
		remaining := domain.NetIncome{NetIncome: income.NetIncome.Sub(transferred)}
		return accounting.ComposeClosingLines(remaining, *accounts, s.composeOptions(accounting.ModeTransfer))
	}

	now := s.now()
	fy, locked, err := s.coordinator.commitFiscalYear(ctx, domain.FiscalYearClosing{
		FiscalYearClosingID: s.coordinator.newID(),
		CompanyID:           req.CompanyID,
		FiscalYear:          req.FiscalYear,
		ClosingDate:         yearEnd,
		TotalRevenue:        income.TotalRevenue,
		TotalExpenses:       income.TotalExpenses,
		NetIncome:           income.NetIncome,
		Status:              domain.FiscalYearPosted,
		ClosedBy:            req.ClosedBy,
		Notes:               strings.TrimSpace(req.Notes),
		AuditFields:         domain.NewAuditFields(req.ClosedBy, now),
	}, yearStart, accounts.RetainedEarnings.AccountID, composeRemainder)
	if err != nil {
		return closingFailure(err)
	}

	net := s.reportedNet(income.NetIncome)
	result := &domain.ClosingResult{
		Success:             true,
		Outcome:             apperrors.OutcomeCommitted,
		JournalEntryID:      fy.JournalEntryID,
		FiscalYearClosingID: fy.FiscalYearClosingID,
		NetIncome:           net,
		Warnings:            []string{},
	}
	s.LogInfo(ctx, "Fiscal year closed", append(attrs,
		slog.String("fiscal_year_closing_id", fy.FiscalYearClosingID),
		slog.String("journal_entry_id", fy.JournalEntryID),
		slog.String("net_income", net.String()),
		slog.String("transferred_by_periods", fy.TransferredAmount.String()),
		slog.Int64("periods_locked", locked))...)

	s.reconcile(ctx, domain.KindFiscalYear, result, accounts.RetainedEarnings, yearEnd)
	s.publish(ctx, result, domain.ClosingEvent{
		Kind:                domain.KindFiscalYear,
		CompanyID:           req.CompanyID,
		FiscalYearClosingID: fy.FiscalYearClosingID,
		PeriodStart:         yearStart,
		PeriodEnd:           yearEnd,
		JournalEntryID:      fy.JournalEntryID,
		NetIncome:           net,
		ClosedBy:            req.ClosedBy,
		OccurredAt:          s.now(),
	})
	return result, nil
}

func (s *closingService) CanCloseFiscalYear(ctx context.Context, companyID string, fiscalYear int) (*domain.CanCloseResult, error) {
	companyID = strings.TrimSpace(companyID)
	err := validateFiscalYear(companyID, fiscalYear)
	if err == nil {
		err = s.requireCompany(ctx, companyID)
	}
	if err == nil {
		_, err = s.accounts.Lookup(ctx, companyID)
	}
	if err == nil {
		err = s.guardFiscalYear(ctx, companyID, fiscalYear)
	}
	return canCloseAnswer(err)
}

// =============================================================================
// PERIOD READS
// =============================================================================

func (s *closingService) GetPeriod(ctx context.Context, companyID, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("accounting period " + periodID + " not found")
		}
		s.LogError(ctx, err, "Failed to get accounting period", slog.String("period_id", periodID))
		return nil, err
	}
	if period.CompanyID != companyID {
		return nil, apperrors.NewNotFoundError("accounting period " + periodID + " not found")
	}
	return period, nil
}

func (s *closingService) ListPeriods(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.AccountingPeriod, *string, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, nil, apperrors.NewValidationError("company id is required")
	}
	if err := s.requireCompany(ctx, companyID); err != nil {
		return nil, nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultPeriodPageSize
	case limit > maxPeriodPageSize:
		limit = maxPeriodPageSize
	}

	periods, next, err := s.periodRepo.ListPeriods(ctx, companyID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounting periods", slog.String("company_id", companyID))
		return nil, nil, err
	}
	if periods == nil {
		periods = []domain.AccountingPeriod{}
	}
	return periods, next, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *closingService) composeOptions(mode accounting.ClosingMode) accounting.ComposeOptions {
	return accounting.ComposeOptions{Epsilon: s.cfg.Epsilon, Mode: mode}
}

// reportedNet is the net income a caller sees: zero within epsilon, otherwise rounded to the ledger scale.
func (s *closingService) reportedNet(net decimal.Decimal) decimal.Decimal {
	if net.Abs().LessThan(s.cfg.Epsilon) {
		return decimal.Zero
	}
	return net.Round(accounting.LedgerScale)
}

func (s *closingService) requireCompany(ctx context.Context, companyID string) error {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("unknown company id " + companyID)
		}
		s.LogError(ctx, err, "Failed to look up company", slog.String("company_id", companyID))
		return err
	}
	if !company.IsActive {
		return apperrors.NewValidationError("company " + companyID + " is inactive")
	}
	return nil
}

// guardPeriod is the read-only eligibility check. The coordinator repeats it under the fiscal-year locks.
func (s *closingService) guardPeriod(ctx context.Context, companyID string, start, end time.Time) error {
	period, err := s.periodRepo.FindPeriod(ctx, companyID, start, end)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
	case err != nil:
		return err
	case period.IsFinal():
		return periodClosedError(*period)
	}

	overlap, err := s.periodRepo.FindOverlappingPeriod(ctx, companyID, start, end)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
	case err != nil:
		return err
	default:
		return periodOverlapError(*overlap)
	}

	// A closed fiscal year already moved everything inside it.
	firstYear, lastYear := s.fiscalYearsOf(start, end)
	for year := firstYear; year <= lastYear; year++ {
		_, err = s.fiscalYearRepo.FindFiscalYearClosing(ctx, companyID, year)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			continue
		case err != nil:
			return err
		}
		return containingYearClosedError(year)
	}
	return nil
}

func (s *closingService) fiscalYearsOf(start, end time.Time) (int, int) {
	return domain.FiscalYearOf(start, s.cfg.FiscalYearStartMonth), domain.FiscalYearOf(end, s.cfg.FiscalYearStartMonth)
}

func (s *closingService) guardFiscalYear(ctx context.Context, companyID string, fiscalYear int) error {
	_, err := s.fiscalYearRepo.FindFiscalYearClosing(ctx, companyID, fiscalYear)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return apperrors.NewAppError(409, fmt.Sprintf("fiscal year %d is already closed", fiscalYear), apperrors.ErrAlreadyClosed)
}

func periodClosedError(period domain.AccountingPeriod) error {
	return apperrors.NewAppError(409, "period "+period.PeriodName+" is already "+string(period.Status), apperrors.ErrAlreadyClosed)
}

// periodOverlapError rejects a range that shares days with a period that already transferred them.
func periodOverlapError(period domain.AccountingPeriod) error {
	return apperrors.NewAppError(409, fmt.Sprintf("period overlaps %s (%s to %s), which is already %s",
		period.PeriodName, period.PeriodStart.Format(time.DateOnly), period.PeriodEnd.Format(time.DateOnly), period.Status),
		apperrors.ErrAlreadyClosed)
}

func containingYearClosedError(fiscalYear int) error {
	return apperrors.NewAppError(409, fmt.Sprintf("fiscal year %d containing the period is already closed", fiscalYear), apperrors.ErrAlreadyClosed)
}

// reconcile attaches the recomputed Retained Earnings balance, or a warning when the read fails.
func (s *closingService) reconcile(ctx context.Context, kind domain.ClosingKind, result *domain.ClosingResult, re domain.Account, asOf time.Time) {
	balance, err := s.reconciler.AccountBalance(ctx, re, asOf)
	if err != nil {
		s.LogWarn(ctx, "Retained earnings reconciliation failed after commit",
			slog.String("company_id", re.CompanyID), slog.String("error", err.Error()))
		result.Warnings = append(result.Warnings, err.Error())
		if s.recorder != nil {
			s.recorder.ObserveReconciliationWarning(kind)
		}
		return
	}
	result.RetainedEarningsBalance = balance
}

func (s *closingService) publish(ctx context.Context, result *domain.ClosingResult, event domain.ClosingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishClosed(ctx, event); err != nil {
		s.LogWarn(ctx, "Failed to publish closing event",
			slog.String("company_id", event.CompanyID), slog.String("error", err.Error()))
		result.Warnings = append(result.Warnings, "closing event not published: "+err.Error())
	}
}

func (s *closingService) observe(kind domain.ClosingKind, err error, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveClose(kind, outcomeLabel(err), elapsed)
	}
}

// outcomeLabel separates expected rejections from write outcomes.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, apperrors.ErrAlreadyClosed):
		return "already_closed"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrConfiguration):
		return "misconfigured"
	default:
		return strings.ToLower(string(apperrors.OutcomeOf(err)))
	}
}

// closingFailure wraps err as a ClosingError, defaulting to "nothing written".
func closingFailure(err error) (*domain.ClosingResult, error) {
	var ce *apperrors.ClosingError
	if !errors.As(err, &ce) {
		err = apperrors.NewClosingError(apperrors.OutcomeNothingWritten, err)
	}
	return &domain.ClosingResult{
		Success:   false,
		Err:       err,
		Outcome:   apperrors.OutcomeOf(err),
		NetIncome: decimal.Zero,
		Warnings:  []string{},
	}, err
}

// canCloseAnswer reports business rejections in the result and storage failures as errors.
func canCloseAnswer(err error) (*domain.CanCloseResult, error) {
	switch {
	case err == nil:
		return &domain.CanCloseResult{CanClose: true}, nil
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrConfiguration),
		errors.Is(err, apperrors.ErrAlreadyClosed):
		return &domain.CanCloseResult{CanClose: false, Reason: err.Error(), Err: err}, nil
	default:
		return nil, err
	}
}

func normalizeRange(companyID string, start, end time.Time) (string, time.Time, time.Time, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return "", time.Time{}, time.Time{}, apperrors.NewValidationError("company id is required")
	}
	if start.IsZero() || end.IsZero() {
		return "", time.Time{}, time.Time{}, apperrors.NewValidationError("period start and end are required")
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if start.After(end) {
		return "", time.Time{}, time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("period start %s is after period end %s", start.Format(time.DateOnly), end.Format(time.DateOnly)))
	}
	return companyID, start, end, nil
}

func normalizePeriodRequest(req domain.ClosePeriodRequest) (domain.ClosePeriodRequest, error) {
	companyID, start, end, err := normalizeRange(req.CompanyID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return req, err
	}
	req.CompanyID, req.PeriodStart, req.PeriodEnd = companyID, start, end
	req.ClosedBy = strings.TrimSpace(req.ClosedBy)
	if req.ClosedBy == "" {
		return req, apperrors.NewValidationError("closed by is required")
	}
	req.PeriodName = strings.TrimSpace(req.PeriodName)
	if req.PeriodName == "" {
		req.PeriodName = domain.DefaultPeriodName(start, end)
	}
	req.Notes = strings.TrimSpace(req.Notes)
	return req, nil
}

func validateFiscalYear(companyID string, fiscalYear int) error {
	if companyID == "" {
		return apperrors.NewValidationError("company id is required")
	}
	if fiscalYear < minFiscalYear || fiscalYear > maxFiscalYear {
		return apperrors.NewValidationError(fmt.Sprintf("fiscal year %d is out of range", fiscalYear))
	}
	return nil
}
