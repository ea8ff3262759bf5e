package metrics

import "github.com/prometheus/client_golang/prometheus"

// CRMMetrics exposes counters/histograms for the CRM's workflow operations.
// All observe methods are nil-safe so callers never need to guard.
type CRMMetrics struct {
	leadMutations  *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	dispatchTotal  *prometheus.CounterVec
	importDuration prometheus.Histogram
}

func NewCRMMetrics(reg prometheus.Registerer) *CRMMetrics {
	m := &CRMMetrics{
		leadMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "leads",
			Name:      "mutations_total",
			Help:      "Total lead mutations by operation and outcome",
		}, []string{"operation", "outcome"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "bulk_import",
			Name:      "rows_total",
			Help:      "Total bulk-import rows by result",
		}, []string{"result"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "outreach",
			Name:      "dispatch_total",
			Help:      "Total outbound messages by channel and status",
		}, []string{"channel", "status"}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "bulk_import",
			Name:      "duration_seconds",
			Help:      "Wall time of bulk-import runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadMutations, m.importRows, m.dispatchTotal, m.importDuration)
	return m
}

func (m *CRMMetrics) ObserveLeadMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.leadMutations.WithLabelValues(operation, outcome).Inc()
}

func (m *CRMMetrics) ObserveImportRow(result string) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(result).Inc()
}

func (m *CRMMetrics) ObserveDispatch(channel, status string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(channel, status).Inc()
}

func (m *CRMMetrics) ObserveImportDuration(seconds float64) {
	if m == nil {
		return
	}
	m.importDuration.Observe(seconds)
}
