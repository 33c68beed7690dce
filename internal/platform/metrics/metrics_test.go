package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/closing_engine/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_ObserveClose(t *testing.T) {
	committed := ClosesTotal.WithLabelValues(string(domain.KindPeriod), "committed")
	failed := RollbackFailures.WithLabelValues(string(domain.KindFiscalYear))
	beforeCommitted := testutil.ToFloat64(committed)
	beforeFailed := testutil.ToFloat64(failed)

	r := Recorder{}
	r.ObserveClose(domain.KindPeriod, "committed", 20*time.Millisecond)
	r.ObserveClose(domain.KindFiscalYear, "rollback_failed", time.Second)

	assert.Equal(t, beforeCommitted+1, testutil.ToFloat64(committed))
	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failed))
}

func TestRecorder_ObserveReconciliationWarning(t *testing.T) {
	c := ReconciliationWarnings.WithLabelValues(string(domain.KindPeriod))
	before := testutil.ToFloat64(c)

	Recorder{}.ObserveReconciliationWarning(domain.KindPeriod)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/periods/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	c := HTTPRequests.WithLabelValues(http.MethodGet, "/periods/:id", "204")
	before := testutil.ToFloat64(c)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/periods/abc", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
