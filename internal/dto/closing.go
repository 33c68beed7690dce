package dto

import (
	"time"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of every period boundary.
const DateLayout = "2006-01-02"

// ClosePeriodRequest defines the data needed to close an accounting period.
// The closing user comes from the bearer token.
type ClosePeriodRequest struct {
	PeriodStart string `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	PeriodName  string `json:"periodName" binding:"omitempty,max=100"`
	Notes       string `json:"notes" binding:"omitempty,max=1000"`
}

// PeriodRangeQuery selects a period in query parameters.
type PeriodRangeQuery struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end" binding:"required,datetime=2006-01-02"`
}

// CloseFiscalYearRequest carries the optional body of a fiscal-year close.
type CloseFiscalYearRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

// ListPeriodsParams defines the query parameters for listing periods.
type ListPeriodsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ClosingResultResponse is returned by both close endpoints.
type ClosingResultResponse struct {
	Success                 bool              `json:"success"`
	Outcome                 apperrors.Outcome `json:"outcome"`
	JournalEntryID          string            `json:"journalEntryID,omitempty"`
	PeriodID                string            `json:"periodID,omitempty"`
	FiscalYearClosingID     string            `json:"fiscalYearClosingID,omitempty"`
	NetIncome               decimal.Decimal   `json:"netIncome"`
	RetainedEarningsBalance decimal.Decimal   `json:"retainedEarningsBalance"`
	Warnings                []string          `json:"warnings,omitempty"`
	Error                   string            `json:"error,omitempty"`
	NeedsOperator           bool              `json:"needsOperator,omitempty"`
}

// CanCloseResponse answers a can-close query.
type CanCloseResponse struct {
	CanClose bool   `json:"canClose"`
	Reason   string `json:"reason,omitempty"`
}

// ClosingLineResponse is one line of a previewed closing entry.
type ClosingLineResponse struct {
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description,omitempty"`
}

// ClosingPreviewResponse is the dry run of a period close.
type ClosingPreviewResponse struct {
	TotalRevenue              decimal.Decimal       `json:"totalRevenue"`
	TotalExpenses             decimal.Decimal       `json:"totalExpenses"`
	NetIncome                 decimal.Decimal       `json:"netIncome"`
	LineCount                 int                   `json:"lineCount"`
	RetainedEarningsAccountID string                `json:"retainedEarningsAccountID"`
	IncomeSummaryAccountID    string                `json:"incomeSummaryAccountID"`
	Lines                     []ClosingLineResponse `json:"lines"`
	CanClose                  bool                  `json:"canClose"`
	Reason                    string                `json:"reason,omitempty"`
}

// PeriodResponse defines the data returned for an accounting period.
type PeriodResponse struct {
	PeriodID       string              `json:"periodID"`
	CompanyID      string              `json:"companyID"`
	PeriodName     string              `json:"periodName"`
	PeriodStart    string              `json:"periodStart"`
	PeriodEnd      string              `json:"periodEnd"`
	Status         domain.PeriodStatus `json:"status"`
	ClosedBy       string              `json:"closedBy,omitempty"`
	ClosedAt       *time.Time          `json:"closedAt,omitempty"`
	JournalEntryID string              `json:"journalEntryID,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

// ListPeriodsResponse is a page of periods.
type ListPeriodsResponse struct {
	Periods   []PeriodResponse `json:"periods"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ParseDate parses a YYYY-MM-DD boundary as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ToClosingResultResponse converts a domain.ClosingResult to its response DTO.
func ToClosingResultResponse(r *domain.ClosingResult) ClosingResultResponse {
	resp := ClosingResultResponse{
		Success:                 r.Success,
		Outcome:                 r.Outcome,
		JournalEntryID:          r.JournalEntryID,
		PeriodID:                r.PeriodID,
		FiscalYearClosingID:     r.FiscalYearClosingID,
		NetIncome:               r.NetIncome,
		RetainedEarningsBalance: r.RetainedEarningsBalance,
		Warnings:                r.Warnings,
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
		resp.NeedsOperator = apperrors.NeedsOperator(r.Err)
	}
	return resp
}

func ToClosingPreviewResponse(p *domain.ClosingPreview) ClosingPreviewResponse {
	lines := make([]ClosingLineResponse, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, ClosingLineResponse{
			AccountID:    l.AccountID,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
		})
	}
	return ClosingPreviewResponse{
		TotalRevenue:              p.TotalRevenue,
		TotalExpenses:             p.TotalExpenses,
		NetIncome:                 p.NetIncome.NetIncome,
		LineCount:                 p.LineCount,
		RetainedEarningsAccountID: p.RetainedEarningsAccountID,
		IncomeSummaryAccountID:    p.IncomeSummaryAccountID,
		Lines:                     lines,
		CanClose:                  p.CanClose,
		Reason:                    p.Reason,
	}
}

func ToPeriodResponse(p *domain.AccountingPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:       p.PeriodID,
		CompanyID:      p.CompanyID,
		PeriodName:     p.PeriodName,
		PeriodStart:    p.PeriodStart.Format(DateLayout),
		PeriodEnd:      p.PeriodEnd.Format(DateLayout),
		Status:         p.Status,
		ClosedBy:       p.ClosedBy,
		ClosedAt:       p.ClosedAt,
		JournalEntryID: p.JournalEntryID,
		Notes:          p.Notes,
	}
}

func ToListPeriodsResponse(periods []domain.AccountingPeriod, nextToken *string) ListPeriodsResponse {
	resp := ListPeriodsResponse{Periods: make([]PeriodResponse, 0, len(periods)), NextToken: nextToken}
	for i := range periods {
		resp.Periods = append(resp.Periods, ToPeriodResponse(&periods[i]))
	}
	return resp
}
