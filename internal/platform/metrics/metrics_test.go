package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveParse(t *testing.T) {
	m := New()
	m.ObserveParse("source", 1, 2, 5, 3*time.Millisecond)
	m.ObserveParse("source", 0, 1, 1, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsParsed.WithLabelValues("source")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Entities.WithLabelValues("pet")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Entities.WithLabelValues("visit")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveParse("x", 1, 1, 1, time.Second)
		m.CacheHit()
		m.CacheMiss()
		m.ObserveSave(1, 1, 1)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheHit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `vetsheet_parse_cache_lookups_total{result="hit"} 1`))
}
