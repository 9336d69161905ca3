package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlasjobs/atlas/internal/engine"
	"github.com/atlasjobs/atlas/internal/engine/handlers"
	"github.com/atlasjobs/atlas/internal/httpapi"
	"github.com/atlasjobs/atlas/internal/obs"
	"github.com/atlasjobs/atlas/internal/pkg/envutil"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
	"github.com/atlasjobs/atlas/internal/queue"
	"github.com/atlasjobs/atlas/internal/store"
)

func main() {
	log, err := logger.New(envutil.GetEnv("ATLAS_ENV", "dev"))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := obs.InitTracing(ctx, log, "atlas-server")
	defer shutdownTracing(context.Background())

	db, err := store.Open(log)
	if err != nil {
		log.Fatal("failed to connect to store", "error", err)
	}

	q, err := queue.New(log)
	if err != nil {
		log.Fatal("failed to connect to queue", "error", err)
	}
	defer q.Close()

	metrics := obs.NewMetrics()
	go obs.PollQueueDepth(ctx, log, q, metrics, 5*time.Second)

	// The submission layer validates against the same set of registered
	// types the worker dispatches to, so an unsupported type is rejected
	// with 400 here rather than surfacing as a FAILED job after dequeue.
	registry := engine.NewRegistry()
	mustRegister(log, registry, handlers.Echo{})
	mustRegister(log, registry, handlers.Sleep{})

	jobStore := store.NewJobStore(db, log)
	jobsHandler := httpapi.NewJobsHandler(log, jobStore, q, registry).WithMetrics(metrics)
	healthHandler := httpapi.NewHealthHandler(db, q)

	server := httpapi.NewServer(httpapi.RouterConfig{
		JobsHandler:   jobsHandler,
		HealthHandler: healthHandler,
	})

	addr := ":" + envutil.GetEnv("PORT", "8080")
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- server.Run(addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("http server exited", "error", err)
		}
	}
}

func mustRegister(log *logger.Logger, reg *engine.Registry, h engine.Handler) {
	if err := reg.Register(h); err != nil {
		log.Fatal("handler registration failed", "job_type", h.Type(), "error", err)
	}
}
