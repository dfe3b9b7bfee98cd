package generator

import "github.com/prometheus/client_golang/prometheus"

var generatedCount = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "forecast_generated_transactions_total",
		Help: "How many transactions were generated.",
	},
)

var skippedCount = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "forecast_skipped_occurrences_total",
		Help: "How many occurrences were skipped because they had already been posted.",
	},
)

var warningCount = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "forecast_generation_warnings_total",
		Help: "How many records could not be generated because of missing references.",
	},
)

// Metrics returns the Prometheus collectors of the generator.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{
		generatedCount,
		skippedCount,
		warningCount,
	}
}
