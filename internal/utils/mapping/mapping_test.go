package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAccountingPeriod_OptionalColumnsBecomeNull(t *testing.T) {
	p := domain.AccountingPeriod{
		PeriodID:    "p1",
		CompanyID:   "c1",
		PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Status:      domain.PeriodOpen,
	}

	m := ToModelAccountingPeriod(p)
	assert.Nil(t, m.ClosedBy)
	assert.Nil(t, m.JournalEntryID)
	assert.Nil(t, m.Notes)
	assert.Equal(t, p, ToDomainAccountingPeriod(m))
}

func TestAccount_SubTypeAndParentAreNullable(t *testing.T) {
	a := domain.Account{AccountID: "a1", SubType: domain.SubTypeIncomeSummary, AccountType: domain.Equity}

	m := ToModelAccount(a)
	if assert.NotNil(t, m.SubType) {
		assert.Equal(t, domain.SubTypeIncomeSummary, *m.SubType)
	}
	assert.Nil(t, m.ParentAccountID)
	assert.Equal(t, a, ToDomainAccount(m))
}
