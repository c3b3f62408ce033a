package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	llmReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Generation requests by backend and outcome (ok or the degraded kind).",
		},
		[]string{"backend", "outcome"},
	)

	llmLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of generation requests in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(llmReqs, llmLat)
}

func observe(backend string, start time.Time, soft *SoftError) {
	outcome := "ok"
	if soft != nil {
		outcome = string(soft.Kind)
	}
	llmReqs.WithLabelValues(backend, outcome).Inc()
	llmLat.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
