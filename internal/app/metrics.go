package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var metricsRegistry = prometheus.NewRegistry()

var (
	syncTicks = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincsops_sync_ticks_total",
			Help: "Sync ticks by outcome (committed, failed, stale).",
		},
		[]string{"outcome"},
	)

	syncDuration = promauto.With(metricsRegistry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fincsops_sync_tick_duration_seconds",
			Help:    "Wall time of one sync tick including all five reads.",
			Buckets: prometheus.DefBuckets,
		},
	)

	feedDegraded = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincsops_feed_degraded_total",
			Help: "Non-critical reads that degraded to empty data, by feed.",
		},
		[]string{"feed"},
	)

	commandsTotal = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fincsops_commands_total",
			Help: "Dispatched operator commands by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	lastCommitTime = promauto.With(metricsRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fincsops_last_commit_timestamp_seconds",
			Help: "Unix time of the last committed snapshot.",
		},
	)
)

// MetricsHandler serves the console's Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}
