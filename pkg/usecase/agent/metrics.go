package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tandem_agent_queries_total",
			Help: "Total number of queries handled by the routing agent",
		},
		[]string{"intent", "kind"},
	)

	modelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tandem_agent_model_call_duration_seconds",
			Help:    "Duration of parameter extraction model calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)
)
