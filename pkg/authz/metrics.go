package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Casbin evaluations by object, mode and result.",
	}, []string{"object", "mode", "result"})

	decisionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authz_latency_seconds",
		Help:    "Time spent in casbin Enforce.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 7),
	}, []string{"mode"})
)

func observe(d Decision, took time.Duration) {
	result := "denied"
	if d.Allowed {
		result = "allowed"
	}
	decisionsTotal.WithLabelValues(d.Request.Object, string(d.Mode), result).Inc()
	decisionSeconds.WithLabelValues(string(d.Mode)).Observe(took.Seconds())
}
