package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	require.NoError(t, err)

	rec.IncCounter("success", map[string]string{"chain": "0x2105"})
	rec.IncCounter("success", map[string]string{"chain": "0x2105"})
	rec.IncCounter("UserCanceled", nil)
	rec.ObserveLatency("send", 1500*time.Millisecond, map[string]string{"chain": "0x2105"})

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.counters.WithLabelValues("success", "0x2105")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.counters.WithLabelValues("UserCanceled", "")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.histogram))

	t.Run("double registration fails", func(t *testing.T) {
		_, err := NewPrometheusRecorder(reg)
		assert.Error(t, err)
	})

	t.Run("handler exposes namespace", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.Contains(rr.Body.String(), "basetip_events_total"))
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.IncCounter("x", nil)
		r.ObserveLatency("y", time.Second, nil)
	})
}
