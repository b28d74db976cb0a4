// Package metrics defines the Prometheus collectors a search server reports to.
// Every Record method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcome labels.
const (
	ResultHit   = "hit"
	ResultEmpty = "empty"
	ResultError = "error"
)

// Metrics holds all Prometheus collectors for one search server.
type Metrics struct {
	DocumentsAddedTotal    prometheus.Counter
	DocumentsRejectedTotal *prometheus.CounterVec
	DocumentsRemovedTotal  *prometheus.CounterVec
	DuplicatesRemovedTotal prometheus.Counter
	LiveDocuments          prometheus.Gauge
	IndexedTerms           prometheus.Gauge
	QueriesTotal           *prometheus.CounterVec
	QueryLatency           prometheus.Histogram
	QueryResultsCount      prometheus.Histogram
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsAddedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_server_documents_added_total",
				Help: "Total number of documents ingested.",
			},
		),
		DocumentsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_server_documents_rejected_total",
				Help: "Total number of rejected ingestions by reason.",
			},
			[]string{"reason"},
		),
		DocumentsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_server_documents_removed_total",
				Help: "Total number of documents removed by execution policy.",
			},
			[]string{"policy"},
		),
		DuplicatesRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_server_duplicates_removed_total",
				Help: "Total number of documents removed as duplicates.",
			},
		),
		LiveDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_server_live_documents",
				Help: "Number of live documents.",
			},
		),
		IndexedTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_server_indexed_terms",
				Help: "Number of distinct terms in the inverted index.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_server_queries_total",
				Help: "Total ranked queries by result type (hit, empty, error).",
			},
			[]string{"result_type"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_server_query_latency_seconds",
				Help:    "Ranked query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_server_query_results_count",
				Help:    "Number of hits returned per ranked query.",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
			},
		),
	}

	reg.MustRegister(
		m.DocumentsAddedTotal,
		m.DocumentsRejectedTotal,
		m.DocumentsRemovedTotal,
		m.DuplicatesRemovedTotal,
		m.LiveDocuments,
		m.IndexedTerms,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
	)
	return m
}

// RecordDocumentAdded counts a successful ingestion and refreshes the size gauges.
func (m *Metrics) RecordDocumentAdded(liveDocuments, indexedTerms int) {
	if m == nil {
		return
	}
	m.DocumentsAddedTotal.Inc()
	m.setSize(liveDocuments, indexedTerms)
}

// RecordDocumentRejected counts a failed ingestion under reason.
func (m *Metrics) RecordDocumentRejected(reason string) {
	if m == nil {
		return
	}
	m.DocumentsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordDocumentRemoved counts a removal performed with policy and refreshes the size gauges.
func (m *Metrics) RecordDocumentRemoved(policy string, liveDocuments, indexedTerms int) {
	if m == nil {
		return
	}
	m.DocumentsRemovedTotal.WithLabelValues(policy).Inc()
	m.setSize(liveDocuments, indexedTerms)
}

// RecordDuplicatesRemoved adds count to the duplicate removal counter.
func (m *Metrics) RecordDuplicatesRemoved(count int) {
	if m == nil {
		return
	}
	m.DuplicatesRemovedTotal.Add(float64(count))
}

// RecordQuery records the outcome of one ranked query.
func (m *Metrics) RecordQuery(duration time.Duration, results int, err error) {
	if m == nil {
		return
	}
	m.QueryLatency.Observe(duration.Seconds())
	switch {
	case err != nil:
		m.QueriesTotal.WithLabelValues(ResultError).Inc()
		return
	case results == 0:
		m.QueriesTotal.WithLabelValues(ResultEmpty).Inc()
	default:
		m.QueriesTotal.WithLabelValues(ResultHit).Inc()
	}
	m.QueryResultsCount.Observe(float64(results))
}

func (m *Metrics) setSize(liveDocuments, indexedTerms int) {
	m.LiveDocuments.Set(float64(liveDocuments))
	m.IndexedTerms.Set(float64(indexedTerms))
}
