package services

import (
	"context"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
)

// ClosingEventPublisher announces committed closes to other services.
type ClosingEventPublisher interface {
	PublishClosed(ctx context.Context, event domain.ClosingEvent) error
}

// ClosingRecorder receives closing telemetry.
type ClosingRecorder interface {
	ObserveClose(kind domain.ClosingKind, outcome string, elapsed time.Duration)
	ObserveReconciliationWarning(kind domain.ClosingKind)
}
