package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_ticks_total",
			Help: "Total number of evaluation ticks",
		},
		[]string{"mode"},
	)

	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_monitor_tick_duration_seconds",
			Help:    "Duration of one fetch-evaluate-notify tick",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	fetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_fetch_failures_total",
			Help: "Total number of symbols skipped because their bars could not be acquired",
		},
		[]string{"symbol"},
	)

	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_candidates_total",
			Help: "Total number of signal events produced by the classifier",
		},
		[]string{"kind"},
	)

	acceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_accepted_total",
			Help: "Total number of signal events passed by the dedup gate",
		},
		[]string{"kind"},
	)

	suppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_suppressed_total",
			Help: "Total number of duplicate signal events suppressed",
		},
		[]string{"kind"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_monitor_deliveries_total",
			Help: "Total number of notification attempts by result",
		},
		[]string{"result"},
	)
)
