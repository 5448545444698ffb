package predict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tandem_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"service", "outcome"},
	)

	predictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tandem_prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	featureLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tandem_online_feature_lookups_total",
			Help: "Total number of online feature lookups by result",
		},
		[]string{"view", "result"},
	)
)
