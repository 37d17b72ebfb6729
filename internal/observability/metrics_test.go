package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordLogin("ok")
	m.RecordLogin("invalid_credentials")
	m.RecordLogin("invalid_credentials")
	m.RecordSession("expired_token")
	m.RecordOwnership("listing", "deny")
	m.RecordUpload("listing", "ok")
	m.RecordRequest("/listings/:id", "GET", 200, 15*time.Millisecond)
	m.RecordError("/listings/:id", "PATCH", "FORBIDDEN")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions.WithLabelValues("expired_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ownership.WithLabelValues("listing", "deny")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("listing", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/listings/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("PATCH", "/listings/:id", "FORBIDDEN")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordLogin("ok")
		m.RecordSession("ok")
		m.RecordOwnership("listing", "allow")
		m.RecordUpload("user", "ok")
		m.RecordRequest("/", "GET", 200, time.Second)
		m.RecordError("/", "GET", "INTERNAL_ERROR")
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_HandlerExposesFamilies(t *testing.T) {
	m := NewMetrics()
	m.RecordLogin("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "marketplace_auth_logins_total")
}
