package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// runsTotal counts engine runs by domain, mode and outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eureka_runs_total",
		Help: "Engine runs by domain, mode and outcome",
	}, []string{"domain", "mode", "outcome"})

	// bestDistance is the distance of the latest best candidate.
	bestDistance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eureka_best_distance",
		Help: "Distance between the current best candidate and the target",
	}, []string{"domain"})
)

// ServeMetrics exposes the default Prometheus registry on addr until ctx is
// done.
func ServeMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving metrics", slog.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
