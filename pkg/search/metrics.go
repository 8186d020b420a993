package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchTotal counts finished searches by strategy and outcome.
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eureka_search_total",
		Help: "Finished searches by strategy and outcome",
	}, []string{"strategy", "outcome"})

	// searchDuration tracks wall-clock time per search.
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eureka_search_duration_seconds",
		Help:    "Search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.4min
	}, []string{"strategy"})

	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eureka_candidates_total",
		Help: "Candidate expressions generated and evaluated",
	}, []string{"strategy"})

	nonFiniteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eureka_candidates_nonfinite_total",
		Help: "Candidates whose distance to the target was NaN or infinite",
	}, []string{"strategy"})
)

func observeSearch(strategy string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	searchTotal.WithLabelValues(strategy, outcome).Inc()
	searchDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}
