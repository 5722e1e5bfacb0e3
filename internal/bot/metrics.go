package bot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// botUpdates counts processed updates by kind and outcome
	// (ok, error, blocked, throttled, ignored, panic).
	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Telegram updates processed by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	botLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_update_duration_seconds",
			Help:    "Time spent handling a Telegram update.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(botUpdates, botLatency)
}

func observeUpdate(kind, outcome string, d time.Duration) {
	botUpdates.WithLabelValues(kind, outcome).Inc()
	botLatency.WithLabelValues(kind).Observe(d.Seconds())
}
