package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serveMetrics starts a background HTTP server exposing registry on
// /metrics at addr and returns a function that shuts it down. Errors
// from the listener (other than a clean Shutdown) are logged, not
// returned, since metrics serving is a best-effort side channel for
// record/tail, never load-bearing for the command's own exit code.
func serveMetrics(addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	log.WithField("addr", addr).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
