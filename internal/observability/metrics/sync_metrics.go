package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	PipelineInvoices  = "invoices"
	PipelineLineItems = "line_items"
)

// SyncMetrics captures the health signals of one batch run: rows written per
// pipeline, per-org provider failures, and reshape reconciliation decisions.
type SyncMetrics struct {
	rowsWritten        *prometheus.CounterVec
	syncErrors         *prometheus.CounterVec
	invoicesSkipped    prometheus.Counter
	reshapeDiagnostics *prometheus.CounterVec
}

func NewSyncMetrics(registry *prometheus.Registry) *SyncMetrics {
	m := &SyncMetrics{
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlasbi_rows_written_total",
			Help: "Rows written to the warehouse per pipeline.",
		}, []string{"pipeline"}),
		syncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlasbi_sync_errors_total",
			Help: "Provider call failures, by pipeline and scope.",
		}, []string{"pipeline", "scope"}),
		invoicesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atlasbi_invoices_skipped_total",
			Help: "Invoices excluded by the finalized-id frontier.",
		}),
		reshapeDiagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atlasbi_reshape_diagnostics_total",
			Help: "Fields dropped or columns defaulted during reshape.",
		}, []string{"op"}),
	}

	registry.MustRegister(
		m.rowsWritten,
		m.syncErrors,
		m.invoicesSkipped,
		m.reshapeDiagnostics,
	)
	return m
}

func (m *SyncMetrics) RecordRowsWritten(pipeline string, n int) {
	if n > 0 {
		m.rowsWritten.WithLabelValues(pipeline).Add(float64(n))
	}
}

func (m *SyncMetrics) RecordSyncError(pipeline, scope string) {
	m.syncErrors.WithLabelValues(pipeline, scope).Inc()
}

func (m *SyncMetrics) RecordInvoicesSkipped(n int) {
	if n > 0 {
		m.invoicesSkipped.Add(float64(n))
	}
}

func (m *SyncMetrics) RecordDiagnostic(op string) {
	m.reshapeDiagnostics.WithLabelValues(op).Inc()
}
