package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blobingest"

// Metrics holds the ingestion collectors. A nil *Metrics is a no-op.
type Metrics struct {
	uploads         *prometheus.CounterVec
	parts           *prometheus.CounterVec
	storedBytes     prometheus.Counter
	publishFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests by outcome.",
		}, []string{"outcome"}),
		parts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parts_total",
			Help:      "Multipart parts seen by kind.",
		}, []string{"kind"}),
		storedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_bytes_total",
			Help:      "Bytes written to the object store.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Upload events that could not be published.",
		}),
	}
	reg.MustRegister(m.uploads, m.parts, m.storedBytes, m.publishFailures)
	return m
}

func (m *Metrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePart(kind string) {
	if m == nil {
		return
	}
	m.parts.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddStoredBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.storedBytes.Add(float64(n))
}

func (m *Metrics) ObservePublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// NewServer returns a server exposing /metrics for gatherer on addr.
func NewServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
