package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics records stock mutation activity.
type StockMetrics struct {
	mutations  *prometheus.CounterVec
	duplicates *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStockMetrics registers the stock mutation metrics on the provided registerer.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutations_total",
		Help: "Stock quantity mutations applied, by source.",
	}, []string{"source"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutation_duplicates_total",
		Help: "Stock mutations skipped because the idempotency key was already recorded.",
	}, []string{"source"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_mutation_batch_duration_seconds",
		Help:    "Duration of stock mutation batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	reg.MustRegister(mutations, duplicates, duration)
	return &StockMetrics{
		mutations:  mutations,
		duplicates: duplicates,
		duration:   duration,
	}
}

// IncMutation increments the mutation counter for the given source.
func (m *StockMetrics) IncMutation(source string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncDuplicate increments the duplicate counter for the given source.
func (m *StockMetrics) IncDuplicate(source string) {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.WithLabelValues(normalizeLabel(source)).Inc()
}

// ObserveBatchDuration records how long a mutation batch took.
func (m *StockMetrics) ObserveBatchDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
