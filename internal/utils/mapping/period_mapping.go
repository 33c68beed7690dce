package mapping

import (
	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/SscSPs/closing_engine/internal/models"
)

// ToModelAccountingPeriod converts a domain AccountingPeriod to a model AccountingPeriod
func ToModelAccountingPeriod(d domain.AccountingPeriod) models.AccountingPeriod {
	return models.AccountingPeriod{
		PeriodID:       d.PeriodID,
		CompanyID:      d.CompanyID,
		PeriodName:     d.PeriodName,
		PeriodStart:    d.PeriodStart,
		PeriodEnd:      d.PeriodEnd,
		Status:         string(d.Status),
		ClosedBy:       nullable(d.ClosedBy),
		ClosedAt:       d.ClosedAt,
		JournalEntryID: nullable(d.JournalEntryID),
		Notes:          nullable(d.Notes),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccountingPeriod converts a model AccountingPeriod to a domain AccountingPeriod
func ToDomainAccountingPeriod(m models.AccountingPeriod) domain.AccountingPeriod {
	return domain.AccountingPeriod{
		PeriodID:       m.PeriodID,
		CompanyID:      m.CompanyID,
		PeriodName:     m.PeriodName,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		Status:         domain.PeriodStatus(m.Status),
		ClosedBy:       deref(m.ClosedBy),
		ClosedAt:       m.ClosedAt,
		JournalEntryID: deref(m.JournalEntryID),
		Notes:          deref(m.Notes),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountingPeriodSlice converts a slice of model periods to domain periods
func ToDomainAccountingPeriodSlice(ms []models.AccountingPeriod) []domain.AccountingPeriod {
	ds := make([]domain.AccountingPeriod, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccountingPeriod(m)
	}
	return ds
}

// ToModelFiscalYearClosing converts a domain FiscalYearClosing to a model FiscalYearClosing
func ToModelFiscalYearClosing(d domain.FiscalYearClosing) models.FiscalYearClosing {
	return models.FiscalYearClosing{
		FiscalYearClosingID: d.FiscalYearClosingID,
		CompanyID:           d.CompanyID,
		FiscalYear:          d.FiscalYear,
		ClosingDate:         d.ClosingDate,
		TotalRevenue:        d.TotalRevenue,
		TotalExpenses:       d.TotalExpenses,
		NetIncome:           d.NetIncome,
		TransferredAmount:   d.TransferredAmount,
		JournalEntryID:      nullable(d.JournalEntryID),
		Status:              string(d.Status),
		ClosedBy:            d.ClosedBy,
		Notes:               nullable(d.Notes),
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFiscalYearClosing converts a model FiscalYearClosing to a domain FiscalYearClosing
func ToDomainFiscalYearClosing(m models.FiscalYearClosing) domain.FiscalYearClosing {
	return domain.FiscalYearClosing{
		FiscalYearClosingID: m.FiscalYearClosingID,
		CompanyID:           m.CompanyID,
		FiscalYear:          m.FiscalYear,
		ClosingDate:         m.ClosingDate,
		TotalRevenue:        m.TotalRevenue,
		TotalExpenses:       m.TotalExpenses,
		NetIncome:           m.NetIncome,
		TransferredAmount:   m.TransferredAmount,
		JournalEntryID:      deref(m.JournalEntryID),
		Status:              domain.FiscalYearStatus(m.Status),
		ClosedBy:            m.ClosedBy,
		Notes:               deref(m.Notes),
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}
