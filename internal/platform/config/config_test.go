package config

import (
	"testing"
	"time"

	"github.com/SscSPs/closing_engine/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a developer's .env out of the test

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, "period.closed", cfg.EventsChannel)

	closing := cfg.ClosingConfig()
	assert.Equal(t, "3200", closing.RetainedEarningsCode)
	assert.Equal(t, "3300", closing.IncomeSummaryCode)
	assert.Equal(t, "0.01", closing.Epsilon.String())
	assert.Equal(t, accounting.ModeTransfer, closing.Mode)
	assert.Equal(t, 30*time.Second, closing.WriteTimeout)
	assert.Equal(t, time.January, closing.FiscalYearStartMonth)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RETAINED_EARNINGS_CODE", "3900")
	t.Setenv("INCOME_SUMMARY_CODE", "3950")
	t.Setenv("CLOSING_MODE", "FULL")
	t.Setenv("CLOSING_WRITE_TIMEOUT", "5s")
	t.Setenv("FISCAL_YEAR_START_MONTH", "7")
	t.Setenv("CLOSING_EPSILON", "0.005")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	closing := cfg.ClosingConfig()
	assert.Equal(t, "3900", closing.RetainedEarningsCode)
	assert.Equal(t, "3950", closing.IncomeSummaryCode)
	assert.Equal(t, accounting.ModeFull, closing.Mode)
	assert.Equal(t, 5*time.Second, closing.WriteTimeout)
	assert.Equal(t, time.July, closing.FiscalYearStartMonth)
	assert.Equal(t, "0.005", closing.Epsilon.String())
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown mode", "CLOSING_MODE", "partial"},
		{"month out of range", "FISCAL_YEAR_START_MONTH", "13"},
		{"same code for both accounts", "INCOME_SUMMARY_CODE", "3200"},
		{"non numeric epsilon", "CLOSING_EPSILON", "tiny"},
		{"zero epsilon", "CLOSING_EPSILON", "0"},
		{"zero write timeout", "CLOSING_WRITE_TIMEOUT", "0s"},
		{"short jwt secret", "JWT_SECRET", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()

			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}
