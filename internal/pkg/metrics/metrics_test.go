package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordImport(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewImportMetrics(registry)
	require.NoError(t, err)

	m.RecordImport(ImportResult{RowsImported: 10, RowsDuplicate: 2, ProjectsCreated: 1}, 150*time.Millisecond)
	m.RecordImport(ImportResult{RowsDuplicate: 12}, 20*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.importsTotal.WithLabelValues(StatusSuccess, "")))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.rowsTotal.WithLabelValues("imported")))
	assert.Equal(t, float64(14), testutil.ToFloat64(m.rowsTotal.WithLabelValues("duplicate")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.projectsTotal.WithLabelValues("created")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.importDuration))
}

func TestRecordImportError(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewImportMetrics(registry)
	require.NoError(t, err)

	m.RecordImportError("encoding")
	m.RecordImportError("encoding")
	m.RecordImportError("malformed")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.importsTotal.WithLabelValues(StatusError, "encoding")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.importsTotal.WithLabelValues(StatusError, "malformed")))
}

func TestRecordCacheLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewImportMetrics(registry)
	require.NoError(t, err)

	m.RecordCacheLookup("finance", false)
	m.RecordCacheLookup("finance", true)
	m.RecordCacheLookup("finance", true)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.reportCacheResults.WithLabelValues("finance", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.reportCacheResults.WithLabelValues("finance", "miss")))
}

func TestRecordPoolStats(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewImportMetrics(registry)
	require.NoError(t, err)

	m.RecordPoolStats(PoolStats{Total: 4, Idle: 3, Acquired: 1})
	m.RecordPoolStats(PoolStats{Total: 5, Idle: 2, Acquired: 3})

	assert.Equal(t, float64(5), testutil.ToFloat64(m.dbConnections.WithLabelValues("total")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.dbConnections.WithLabelValues("acquired")))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *ImportMetrics
	assert.NotPanics(t, func() {
		m.RecordImport(ImportResult{RowsImported: 1}, time.Second)
		m.RecordImportError("x")
		m.RecordCacheLookup("finance", true)
		m.RecordPoolStats(PoolStats{})
	})
}

func TestDuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewImportMetrics(registry)
	require.NoError(t, err)

	_, err = NewImportMetrics(registry)
	assert.Error(t, err)
}
