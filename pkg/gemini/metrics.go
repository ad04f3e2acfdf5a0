package gemini

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geminiweb_model_requests_total",
		Help: "Total number of calls to the model service by operation and outcome",
	}, []string{"op", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geminiweb_model_request_duration_seconds",
		Help:    "Duration of calls to the model service",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"op"})
)
