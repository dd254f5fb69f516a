package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposed(t *testing.T) {
	m := New()
	m.DealRequestsApproved.Inc()
	m.DealRequestsApproved.Inc()
	m.EventPublishFailures.WithLabelValues("deal_request.rejected").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DealRequestsApproved))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DealRequestsRejected))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "carmarket_deal_requests_approved_total 2")
	assert.Contains(t, string(body), `carmarket_event_publish_failures_total{type="deal_request.rejected"} 1`)
}

func TestNewIsolated(t *testing.T) {
	// a second registry must not panic on duplicate registration
	a, b := New(), New()
	a.CarsCreated.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CarsCreated))
}
