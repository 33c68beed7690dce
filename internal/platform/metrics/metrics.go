// Package metrics exposes Prometheus instrumentation for the closing engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/closing_engine/internal/core/ports/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClosesTotal counts close attempts by kind and outcome.
var ClosesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "closing_engine",
	Subsystem: "closing",
	Name:      "attempts_total",
	Help:      "Close attempts by kind and outcome.",
}, []string{"kind", "outcome"})

// CloseDuration tracks how long a close takes end to end.
var CloseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "closing_engine",
	Subsystem: "closing",
	Name:      "duration_seconds",
	Help:      "Wall time of close attempts.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}, []string{"kind"})

// ReconciliationWarnings counts committed closes whose balance check failed.
var ReconciliationWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "closing_engine",
	Subsystem: "closing",
	Name:      "reconciliation_warnings_total",
	Help:      "Committed closes whose retained earnings balance could not be recomputed.",
}, []string{"kind"})

// RollbackFailures counts closes that left the ledger needing manual reconciliation.
var RollbackFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "closing_engine",
	Subsystem: "closing",
	Name:      "rollback_failures_total",
	Help:      "Closes whose partial write could not be undone.",
}, []string{"kind"})

// HTTPRequests counts API requests by route and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "closing_engine",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

// Recorder feeds closing telemetry into the package collectors.
type Recorder struct{}

var _ portssvc.ClosingRecorder = Recorder{}

func (Recorder) ObserveClose(kind domain.ClosingKind, outcome string, elapsed time.Duration) {
	ClosesTotal.WithLabelValues(string(kind), outcome).Inc()
	CloseDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	if outcome == "rollback_failed" {
		RollbackFailures.WithLabelValues(string(kind)).Inc()
	}
}

func (Recorder) ObserveReconciliationWarning(kind domain.ClosingKind) {
	ReconciliationWarnings.WithLabelValues(string(kind)).Inc()
}

// GinMiddleware counts requests by matched route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
