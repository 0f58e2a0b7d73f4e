package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Ordering(t *testing.T) {
	m := New()

	m.OrderingComputed(3*time.Millisecond, 2, 1, 3)
	m.OrderingComputed(time.Millisecond, 4, 0, 2)
	m.OrderingCacheHit()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.orderingsComputed.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderingsComputed.WithLabelValues("hit")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.orderingDeferrals))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderingFlushed))
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Validation(true)
	m.Validation(false)
	m.Validation(false)
	m.SessionTransition("started")
	m.Swipe("up")
	m.Swipe("up")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("pass")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("started")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.swipes.WithLabelValues("up")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderingComputed(time.Millisecond, 1, 1, 1)
		m.OrderingCacheHit()
		m.Validation(true)
		m.SessionTransition("completed")
		m.Swipe("left")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Validation(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `swipe_quiz_result_validations_total{outcome="pass"} 1`)
}
