// Package events announces committed closes to other services over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/SscSPs/closing_engine/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is where close events go unless configured otherwise.
const DefaultChannel = "period.closed"

// redisPublisher is the part of *redis.Client the publisher needs.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// ClosingEventPayload is the wire form of a close event.
type ClosingEventPayload struct {
	EventType string `json:"event_type"` // period.closed or fiscal_year.closed
	domain.ClosingEvent
}

// RedisPublisher publishes closing events as JSON messages.
type RedisPublisher struct {
	rdb     redisPublisher
	channel string
}

var _ portssvc.ClosingEventPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return newRedisPublisher(rdb, channel)
}

func newRedisPublisher(rdb redisPublisher, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func (p *RedisPublisher) PublishClosed(ctx context.Context, event domain.ClosingEvent) error {
	payload, err := json.Marshal(ClosingEventPayload{EventType: eventType(event.Kind), ClosingEvent: event})
	if err != nil {
		return fmt.Errorf("failed to marshal closing event: %w", err)
	}

	receivers, err := p.rdb.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish closing event: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Closing event published",
		slog.String("channel", p.channel),
		slog.String("company_id", event.CompanyID),
		slog.String("kind", string(event.Kind)),
		slog.Int64("receivers", receivers))
	return nil
}

func eventType(kind domain.ClosingKind) string {
	return string(kind) + ".closed"
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishClosed(context.Context, domain.ClosingEvent) error { return nil }
