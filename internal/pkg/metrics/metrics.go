// Package metrics provides Prometheus metrics for imports and reports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import outcome label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ImportMetrics contains Prometheus metrics for the CSV import pipeline
type ImportMetrics struct {
	importsTotal       *prometheus.CounterVec
	rowsTotal          *prometheus.CounterVec
	projectsTotal      *prometheus.CounterVec
	importDuration     prometheus.Histogram
	reportCacheResults *prometheus.CounterVec
	dbConnections      *prometheus.GaugeVec
}

// NewImportMetrics creates and registers new import metrics
func NewImportMetrics(registry prometheus.Registerer) (*ImportMetrics, error) {
	m := &ImportMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ImportMetrics) initMetrics() {
	m.importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_tracker_imports_total",
			Help: "Total number of CSV imports by outcome",
		},
		[]string{"status", "reason"},
	)

	m.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_tracker_import_rows_total",
			Help: "Total number of CSV rows processed by result",
		},
		[]string{"result"}, // imported, duplicate, skipped
	)

	m.projectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_tracker_import_projects_total",
			Help: "Total number of projects provisioned or refreshed by imports",
		},
		[]string{"action"}, // created, updated
	)

	m.importDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bonus_tracker_import_duration_seconds",
			Help: "Time taken to reconcile one uploaded file",
			// 10ms up to ~40s
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	m.reportCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_tracker_report_cache_requests_total",
			Help: "Total number of report cache lookups by result",
		},
		[]string{"report", "result"}, // result: hit, miss
	)

	m.dbConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bonus_tracker_db_connections",
			Help: "Database pool connections by state, sampled periodically",
		},
		[]string{"state"}, // total, idle, acquired
	)
}

// Describe implements the Collector interface
func (m *ImportMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.importsTotal.Describe(ch)
	m.rowsTotal.Describe(ch)
	m.projectsTotal.Describe(ch)
	m.importDuration.Describe(ch)
	m.reportCacheResults.Describe(ch)
	m.dbConnections.Describe(ch)
}

// Collect implements the Collector interface
func (m *ImportMetrics) Collect(ch chan<- prometheus.Metric) {
	m.importsTotal.Collect(ch)
	m.rowsTotal.Collect(ch)
	m.projectsTotal.Collect(ch)
	m.importDuration.Collect(ch)
	m.reportCacheResults.Collect(ch)
	m.dbConnections.Collect(ch)
}

// ImportResult is the subset of an import outcome that is recorded.
type ImportResult struct {
	RowsImported    int
	RowsDuplicate   int
	RowsSkipped     int
	ProjectsCreated int
	ProjectsUpdated int
}

// RecordImport records a successful import.
func (m *ImportMetrics) RecordImport(r ImportResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(StatusSuccess, "").Inc()
	m.rowsTotal.WithLabelValues("imported").Add(float64(r.RowsImported))
	m.rowsTotal.WithLabelValues("duplicate").Add(float64(r.RowsDuplicate))
	m.rowsTotal.WithLabelValues("skipped").Add(float64(r.RowsSkipped))
	m.projectsTotal.WithLabelValues("created").Add(float64(r.ProjectsCreated))
	m.projectsTotal.WithLabelValues("updated").Add(float64(r.ProjectsUpdated))
	m.importDuration.Observe(elapsed.Seconds())
}

// RecordImportError records a rejected or failed import.
func (m *ImportMetrics) RecordImportError(reason string) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(StatusError, reason).Inc()
}

// RecordCacheLookup records a report cache hit or miss.
func (m *ImportMetrics) RecordCacheLookup(report string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCacheResults.WithLabelValues(report, result).Inc()
}

// PoolStats is a sample of database pool occupancy.
type PoolStats struct {
	Total    int32
	Idle     int32
	Acquired int32
}

// RecordPoolStats stores the latest pool sample.
func (m *ImportMetrics) RecordPoolStats(s PoolStats) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues("total").Set(float64(s.Total))
	m.dbConnections.WithLabelValues("idle").Set(float64(s.Idle))
	m.dbConnections.WithLabelValues("acquired").Set(float64(s.Acquired))
}
