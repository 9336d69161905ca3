package obs

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasjobs/atlas/internal/pkg/envutil"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
)

// ServeMetrics starts a standalone /metrics listener for binaries that
// have no other HTTP surface (worker, reaper). It is a no-op unless
// METRICS_ENABLED is set, and runs until ctx is cancelled.
func ServeMetrics(ctx context.Context, log *logger.Logger) {
	if !envutil.GetEnvAsBool("METRICS_ENABLED", false) {
		return
	}
	addr := envutil.GetEnv("METRICS_ADDR", ":9090")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn("metrics server exited", "error", err)
	}
}
