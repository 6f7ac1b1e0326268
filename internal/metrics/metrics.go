package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts dashboard HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgen_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// TextGenDuration tracks text-generation latency per provider.
	TextGenDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewgen_textgen_duration_seconds",
		Help:    "Time spent waiting on the text-generation provider.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider"})

	// TextGenFailures counts reviews whose text could not be generated.
	TextGenFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgen_textgen_failures_total",
		Help: "Text-generation calls that failed after retries.",
	}, []string{"provider"})

	// TextGenRetries counts retried text-generation attempts.
	TextGenRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgen_textgen_retries_total",
		Help: "Text-generation attempts retried after a transient error.",
	}, []string{"provider"})

	// ReviewsGenerated counts reviews produced per sentiment bucket.
	ReviewsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgen_reviews_generated_total",
		Help: "Synthetic reviews produced.",
	}, []string{"sentiment"})

	// CustomersGenerated counts synthetic customers produced.
	CustomersGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviewgen_customers_generated_total",
		Help: "Synthetic customers produced.",
	})

	// DashboardRows reports how many rows the dashboard dataset holds.
	DashboardRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewgen_dashboard_rows",
		Help: "Rows in the loaded dashboard dataset.",
	})
)
