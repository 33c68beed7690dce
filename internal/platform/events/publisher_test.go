package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel string
	message []byte
	err     error
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	return redis.NewIntResult(1, f.err)
}

func TestRedisPublisher_PublishClosed(t *testing.T) {
	rdb := &fakeRedis{}
	p := newRedisPublisher(rdb, "")
	event := domain.ClosingEvent{
		Kind:           domain.KindPeriod,
		CompanyID:      "company-1",
		PeriodID:       "period-1",
		PeriodStart:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		JournalEntryID: "entry-1",
		NetIncome:      decimal.RequireFromString("3000"),
		ClosedBy:       "user-1",
	}

	require.NoError(t, p.PublishClosed(context.Background(), event))

	assert.Equal(t, DefaultChannel, rdb.channel)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rdb.message, &got))
	assert.Equal(t, "period.closed", got["event_type"])
	assert.Equal(t, "company-1", got["companyID"])
	assert.Equal(t, "3000", got["netIncome"])
}

func TestRedisPublisher_FiscalYearEventType(t *testing.T) {
	rdb := &fakeRedis{}
	p := newRedisPublisher(rdb, "ledger.events")

	require.NoError(t, p.PublishClosed(context.Background(), domain.ClosingEvent{Kind: domain.KindFiscalYear}))

	assert.Equal(t, "ledger.events", rdb.channel)
	assert.Contains(t, string(rdb.message), `"event_type":"fiscal_year.closed"`)
}

func TestRedisPublisher_Error(t *testing.T) {
	p := newRedisPublisher(&fakeRedis{err: errors.New("connection refused")}, "")

	err := p.PublishClosed(context.Background(), domain.ClosingEvent{Kind: domain.KindPeriod})

	assert.ErrorContains(t, err, "connection refused")
}
