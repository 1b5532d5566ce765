package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpload("success")
	m.ObserveUpload("success")
	m.ObservePart("file")
	m.AddStoredBytes(11)
	m.AddStoredBytes(0)
	m.ObservePublishFailure()

	require.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.parts.WithLabelValues("file")))
	require.Equal(t, 11.0, testutil.ToFloat64(m.storedBytes))
	require.Equal(t, 1.0, testutil.ToFloat64(m.publishFailures))

	srv := NewServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "blobingest_stored_bytes_total 11"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveUpload("success")
		m.ObservePart("field")
		m.AddStoredBytes(1)
		m.ObservePublishFailure()
	})
}
