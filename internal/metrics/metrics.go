// Package metrics defines the prometheus collectors for refresh cycles.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh cycle metrics
var (
	// RefreshCyclesTotal counts refresh cycles by outcome (success/failure)
	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashtrend_refresh_cycles_total",
			Help: "Total refresh cycles by status",
		},
		[]string{"status"},
	)

	// RefreshDuration tracks end-to-end refresh cycle latency in seconds
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hashtrend_refresh_duration_seconds",
			Help:    "Refresh cycle duration in seconds",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// ItemsScanned is the number of items read by the last successful cycle
	ItemsScanned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashtrend_items_scanned",
			Help: "Items within the window at the last successful refresh",
		},
	)

	// TrendingLabels is the size of the currently published snapshot
	TrendingLabels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashtrend_trending_labels",
			Help: "Number of labels in the published snapshot",
		},
	)

	// LastSuccessTimestamp is the unix time of the last published snapshot
	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashtrend_last_refresh_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		},
	)

	// SourceBreakerState tracks the item source circuit breaker (0=closed, 1=half-open, 2=open)
	SourceBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hashtrend_source_breaker_state",
			Help: "Item source circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Status labels for RefreshCyclesTotal.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
