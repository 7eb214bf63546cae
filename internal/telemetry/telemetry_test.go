package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.GuardDecisions.WithLabelValues("redirect", "missing").Inc()
	m.SyncRuns.WithLabelValues("ok").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("redirect", "missing")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SyncRuns.WithLabelValues("ok")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), `collabhub_guard_decisions_total{cause="missing",outcome="redirect"} 1`)
	assert.Contains(t, string(b), "go_goroutines")
}

func TestNewUsesIsolatedRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
