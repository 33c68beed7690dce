package services

import (
	"time"

	"github.com/SscSPs/closing_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ClosingConfig is the process-wide closing policy. It is built once at startup and never mutated.
type ClosingConfig struct {
	RetainedEarningsCode string
	IncomeSummaryCode    string
	Epsilon              decimal.Decimal
	Mode                 accounting.ClosingMode
	WriteTimeout         time.Duration
	FiscalYearStartMonth time.Month
}

// DefaultClosingConfig returns the chart-of-accounts conventions used when nothing is configured.
func DefaultClosingConfig() ClosingConfig {
	return ClosingConfig{
		RetainedEarningsCode: "3200",
		IncomeSummaryCode:    "3300",
		Epsilon:              accounting.DefaultEpsilon,
		Mode:                 accounting.ModeTransfer,
		WriteTimeout:         30 * time.Second,
		FiscalYearStartMonth: time.January,
	}
}

// withDefaults fills zero fields from DefaultClosingConfig.
func (c ClosingConfig) withDefaults() ClosingConfig {
	d := DefaultClosingConfig()
	if c.RetainedEarningsCode == "" {
		c.RetainedEarningsCode = d.RetainedEarningsCode
	}
	if c.IncomeSummaryCode == "" {
		c.IncomeSummaryCode = d.IncomeSummaryCode
	}
	if !c.Epsilon.IsPositive() {
		c.Epsilon = d.Epsilon
	}
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.FiscalYearStartMonth < time.January || c.FiscalYearStartMonth > time.December {
		c.FiscalYearStartMonth = d.FiscalYearStartMonth
	}
	return c
}
