package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunMetrics collects the counters of one pipeline run. The job is
// run-to-completion with no scrape surface, so the counters are pushed to
// a Prometheus Pushgateway at the end of the run instead of being served.
type RunMetrics struct {
	registry *prometheus.Registry

	rowsInserted     prometheus.Gauge
	rowsSkipped      prometheus.Gauge
	rowsErrored      prometheus.Gauge
	txnsReconciled   prometheus.Gauge
	batchesCreated   prometheus.Gauge
	parentsUpdated   prometheus.Gauge
	missingTxns      prometheus.Gauge
	runDuration      prometheus.Gauge
	runCompletedUnix prometheus.Gauge
}

// NewRunMetrics creates a run metrics set on a private registry
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{registry: prometheus.NewRegistry()}

	gauge := func(name, help string) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		m.registry.MustRegister(g)
		return g
	}

	m.rowsInserted = gauge("settler_rows_inserted", "Settlement rows inserted in the last run")
	m.rowsSkipped = gauge("settler_rows_skipped", "Duplicate settlement rows skipped in the last run")
	m.rowsErrored = gauge("settler_rows_errored", "Settlement rows that failed to insert in the last run")
	m.txnsReconciled = gauge("settler_transactions_reconciled", "Ledger rows matched to gateway transactions in the last run")
	m.batchesCreated = gauge("settler_batches_created", "Merchant batches created in the last run")
	m.parentsUpdated = gauge("settler_parent_batches_updated", "Parent batches whose totals were recomputed in the last run")
	m.missingTxns = gauge("settler_missing_transactions", "Gateway transactions absent from the ledger at the last audit")
	m.runDuration = gauge("settler_run_duration_seconds", "Wall-clock duration of the last run")
	m.runCompletedUnix = gauge("settler_run_completed_timestamp_seconds", "Unix time the last run finished")

	return m
}

// RecordIngest sets the ingest counters
func (m *RunMetrics) RecordIngest(inserted, skipped, errored int) {
	m.rowsInserted.Set(float64(inserted))
	m.rowsSkipped.Set(float64(skipped))
	m.rowsErrored.Set(float64(errored))
}

// RecordReconciliation sets the reconciliation counter
func (m *RunMetrics) RecordReconciliation(found int) {
	m.txnsReconciled.Set(float64(found))
}

// RecordBatches sets the aggregation counters
func (m *RunMetrics) RecordBatches(created, parentsUpdated int) {
	m.batchesCreated.Set(float64(created))
	m.parentsUpdated.Set(float64(parentsUpdated))
}

// RecordMissing sets the audit counter
func (m *RunMetrics) RecordMissing(count int) {
	m.missingTxns.Set(float64(count))
}

// RecordRun sets the run duration and completion timestamp
func (m *RunMetrics) RecordRun(duration time.Duration) {
	m.runDuration.Set(duration.Seconds())
	m.runCompletedUnix.Set(float64(time.Now().Unix()))
}

// Push delivers the collected metrics to the Pushgateway. A no-op when url
// is empty.
func (m *RunMetrics) Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(m.registry).Push()
}
