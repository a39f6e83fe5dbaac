// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Extraction metrics
	ExtractionsTotal     *prometheus.CounterVec
	TokenRecordsDropped  prometheus.Counter
	TransfersNormalized  *prometheus.CounterVec
	ExtractionDuration   *prometheus.HistogramVec
	AddressFailuresTotal *prometheus.CounterVec

	// Fetch metrics
	FetchLatency *prometheus.HistogramVec
	FetchErrors  *prometheus.CounterVec

	// Storage metrics
	StoreWriteDuration *prometheus.HistogramVec
	StoreErrors        *prometheus.CounterVec

	// Batch metrics
	BatchRunsTotal *prometheus.CounterVec
	BatchDuration  prometheus.Histogram

	// Health metrics
	LastSuccessfulExtraction prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wallet_feature_lab"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Extraction metrics
		ExtractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "vectors_total",
			Help:      "Total number of feature extractions by kind and status",
		}, []string{"kind", "status"}),
		TokenRecordsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "token_records_dropped_total",
			Help:      "Total number of malformed token records dropped",
		}),
		TransfersNormalized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "transfers_total",
			Help:      "Total number of raw transfer records received by kind",
		}, []string{"kind"}),
		ExtractionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Feature extraction duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		AddressFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "address_failures_total",
			Help:      "Total number of addresses that failed by stage",
		}, []string{"stage"}),

		// Fetch metrics
		FetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "etherscan",
			Name:      "fetch_latency_seconds",
			Help:      "Transfer history fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "etherscan",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed history fetches",
		}, []string{"action"}),

		// Storage metrics
		StoreWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "write_duration_seconds",
			Help:      "Feature vector write duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of feature vector store errors",
		}, []string{"store", "operation"}),

		// Batch metrics
		BatchRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs by status",
		}, []string{"status"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Health metrics
		LastSuccessfulExtraction: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_extraction_timestamp",
			Help:      "Unix timestamp of last successful address extraction",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordExtraction records one extraction outcome.
func RecordExtraction(kind, status string, seconds float64) {
	DefaultMetrics.ExtractionsTotal.WithLabelValues(kind, status).Inc()
	DefaultMetrics.ExtractionDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordTransfers records the number of raw records received.
func RecordTransfers(kind string, n int) {
	DefaultMetrics.TransfersNormalized.WithLabelValues(kind).Add(float64(n))
}

// RecordTokenDropped records malformed token records.
func RecordTokenDropped(n int) {
	DefaultMetrics.TokenRecordsDropped.Add(float64(n))
}

// RecordAddressFailure records an address that failed at stage.
func RecordAddressFailure(stage string) {
	DefaultMetrics.AddressFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordFetch records fetch latency and errors.
func RecordFetch(action string, seconds float64, err error) {
	DefaultMetrics.FetchLatency.WithLabelValues(action).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(action).Inc()
	}
}

// RecordStoreWrite records store write metrics.
func RecordStoreWrite(store string, seconds float64, err error) {
	DefaultMetrics.StoreWriteDuration.WithLabelValues(store).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreErrors.WithLabelValues(store, "insert").Inc()
	}
}

// RecordBatchRun records a batch run.
func RecordBatchRun(status string, durationSeconds float64) {
	DefaultMetrics.BatchRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.BatchDuration.Observe(durationSeconds)
}

// MarkExtractionSuccess sets the last successful extraction time.
func MarkExtractionSuccess() {
	DefaultMetrics.LastSuccessfulExtraction.SetToCurrentTime()
}
