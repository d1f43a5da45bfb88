package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/docpack/internal/types"
)

// Document outcomes
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

// Metrics holds the package generation collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PackagesTotal     *prometheus.CounterVec
	PackageDuration   prometheus.Histogram
	DocumentsTotal    *prometheus.CounterVec
	DocumentDuration  *prometheus.HistogramVec
	AnalysisDegraded  prometheus.Counter
	PackagesInFlight  prometheus.Gauge
	ProgressDelivered *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PackagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docpack_packages_total",
				Help: "Total number of package runs by terminal status",
			},
			[]string{"status"},
		),
		PackageDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docpack_package_duration_seconds",
				Help:    "Duration of package runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docpack_documents_total",
				Help: "Total number of documents produced by type and outcome",
			},
			[]string{"document_type", "outcome"},
		),
		DocumentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docpack_document_duration_seconds",
				Help:    "Duration of single document generation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"document_type"},
		),
		AnalysisDegraded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docpack_analysis_degraded_total",
				Help: "Package analyses that fell back to default insight fields",
			},
		),
		PackagesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docpack_packages_in_flight",
				Help: "Number of package runs currently executing",
			},
		),
		ProgressDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docpack_progress_snapshots_total",
				Help: "Progress snapshots emitted by status",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDocument records one finished document.
func (m *Metrics) ObserveDocument(docType types.DocumentType, fallback bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeGenerated
	if fallback {
		outcome = OutcomeFallback
	}
	m.DocumentsTotal.WithLabelValues(string(docType), outcome).Inc()
	m.DocumentDuration.WithLabelValues(string(docType)).Observe(d.Seconds())
}

// ObservePackage records one finished run.
func (m *Metrics) ObservePackage(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.PackagesTotal.WithLabelValues(status).Inc()
	m.PackageDuration.Observe(d.Seconds())
}

// ObserveAnalysisDegraded counts an analysis that used defaults.
func (m *Metrics) ObserveAnalysisDegraded() {
	if m == nil {
		return
	}
	m.AnalysisDegraded.Inc()
}

// ObserveProgress counts an emitted snapshot.
func (m *Metrics) ObserveProgress(status string) {
	if m == nil {
		return
	}
	m.ProgressDelivered.WithLabelValues(status).Inc()
}

// RunStarted increments the in-flight gauge and returns its decrement.
func (m *Metrics) RunStarted() func() {
	if m == nil {
		return func() {}
	}
	m.PackagesInFlight.Inc()
	return m.PackagesInFlight.Dec
}
