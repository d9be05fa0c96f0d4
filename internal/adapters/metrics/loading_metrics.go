package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/supplyload-go/internal/domain/loading"
)

// LoadingMetricsCollector handles loading session metrics
type LoadingMetricsCollector struct {
	massLoaded      *prometheus.CounterVec
	shortages       *prometheus.CounterVec
	abandoned       *prometheus.CounterVec
	transferFailed  *prometheus.CounterVec
	sessionsTotal   *prometheus.CounterVec
	holdFullTotal   prometheus.Counter
	tickBudget      prometheus.Histogram
	tickUtilization prometheus.Histogram
}

// NewLoadingMetricsCollector creates a new loading metrics collector
func NewLoadingMetricsCollector() *LoadingMetricsCollector {
	return &LoadingMetricsCollector{
		massLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "mass_loaded_kg_total",
				Help:      "Total mass moved into cargo holds by manifest category",
			},
			[]string{"category"},
		),

		shortages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shortages_total",
				Help:      "Mandatory requirements the source could not supply",
			},
			[]string{"vehicle"},
		),

		abandoned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "abandoned_total",
				Help:      "Requirements dropped for lack of room or stock",
			},
			[]string{"vehicle"},
		),

		transferFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transfer_failures_total",
				Help:      "Individual transfers that failed and were skipped",
			},
			[]string{"vehicle"},
		),

		sessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_total",
				Help:      "Loading sessions ended, by outcome",
			},
			[]string{"outcome"},
		),

		holdFullTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "hold_full_total",
				Help:      "Loading sessions stopped early because the cargo hold was full",
			},
		),

		tickBudget: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_budget_kg",
				Help:      "Loadable mass available per call",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),

		tickUtilization: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tick_budget_utilization_ratio",
				Help:      "Share of the per-call budget actually spent",
				Buckets:   []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0},
			},
		),
	}
}

// Register registers all loading metrics with the Prometheus registry
func (c *LoadingMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.massLoaded,
		c.shortages,
		c.abandoned,
		c.transferFailed,
		c.sessionsTotal,
		c.holdFullTotal,
		c.tickBudget,
		c.tickUtilization,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordLoadTick records one Load or BackgroundLoad call
func (c *LoadingMetricsCollector) RecordLoadTick(vehicle string, stats loading.Stats) {
	for category, kg := range stats.Loaded {
		if kg > 0 {
			c.massLoaded.WithLabelValues(string(category)).Add(kg)
		}
	}

	if stats.Shortages > 0 {
		c.shortages.WithLabelValues(vehicle).Add(float64(stats.Shortages))
	}
	if stats.Abandoned > 0 {
		c.abandoned.WithLabelValues(vehicle).Add(float64(stats.Abandoned))
	}
	if stats.TransferFailures > 0 {
		c.transferFailed.WithLabelValues(vehicle).Add(float64(stats.TransferFailures))
	}

	// Zero-budget calls carry no information about throughput
	if stats.Budget > 0 {
		c.tickBudget.Observe(stats.Budget)
		c.tickUtilization.Observe((stats.Budget - stats.Remaining) / stats.Budget)
	}
}

// RecordSessionEnd records a finished session
func (c *LoadingMetricsCollector) RecordSessionEnd(vehicle string, outcome string, holdFull bool) {
	c.sessionsTotal.WithLabelValues(outcome).Inc()
	if holdFull {
		c.holdFullTotal.Inc()
	}
}
