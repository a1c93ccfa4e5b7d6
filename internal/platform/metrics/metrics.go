package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsCreated  prometheus.Counter
	ModerationsCreated  *prometheus.CounterVec
	DuplicateRejections prometheus.Counter
	ExtractionFailures  *prometheus.CounterVec
	FieldMismatches     *prometheus.CounterVec
	ComparisonDuration  prometheus.Histogram
	HTTPDuration        *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_submissions_created_total",
			Help: "Total number of KYC submissions created",
		}),
		ModerationsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_moderations_created_total",
			Help: "Total number of moderation records created, by decision",
		}, []string{"decision"}),
		DuplicateRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_moderation_duplicates_rejected_total",
			Help: "Total number of moderation attempts rejected by the duplicate guard",
		}),
		ExtractionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_extraction_failures_total",
			Help: "Total number of OCR extraction failures, by cause",
		}, []string{"cause"}),
		FieldMismatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_field_mismatches_total",
			Help: "Total number of field comparison mismatches, by document type",
		}, []string{"document_type"}),
		ComparisonDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "veridoc_comparison_duration_seconds",
			Help:    "Time to sanitize and compare one document",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveHTTPDuration records one HTTP request latency.
func (m *Metrics) ObserveHTTPDuration(method, route string, seconds float64) {
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncrementSubmissionsCreated increments the submissions created counter by 1.
func (m *Metrics) IncrementSubmissionsCreated() {
	m.SubmissionsCreated.Inc()
}

// IncrementModerationsCreated records a moderation decision.
func (m *Metrics) IncrementModerationsCreated(decision string) {
	m.ModerationsCreated.WithLabelValues(decision).Inc()
}

// IncrementDuplicateRejections increments the duplicate guard counter by 1.
func (m *Metrics) IncrementDuplicateRejections() {
	m.DuplicateRejections.Inc()
}

// IncrementExtractionFailures records an extraction failure by cause.
func (m *Metrics) IncrementExtractionFailures(cause string) {
	m.ExtractionFailures.WithLabelValues(cause).Inc()
}

// IncrementFieldMismatches records n mismatched fields for a document type.
func (m *Metrics) IncrementFieldMismatches(documentType string, n int) {
	m.FieldMismatches.WithLabelValues(documentType).Add(float64(n))
}

// ObserveComparisonDuration records one end-to-end comparison duration.
func (m *Metrics) ObserveComparisonDuration(seconds float64) {
	m.ComparisonDuration.Observe(seconds)
}
