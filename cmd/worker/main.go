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

	shutdownTracing := obs.InitTracing(ctx, log, "atlas-worker")
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
	go obs.ServeMetrics(ctx, log)

	registry := engine.NewRegistry()
	mustRegister(log, registry, handlers.Echo{})
	mustRegister(log, registry, handlers.Sleep{})

	jobStore := store.NewJobStore(db, log)
	worker := engine.NewWorker(log, jobStore, q, registry).WithMetrics(metrics)

	log.Info("worker starting")
	if err := worker.Start(ctx); err != nil {
		log.Warn("worker pool exited with error", "error", err)
	}
	log.Info("worker stopped")
}

func mustRegister(log *logger.Logger, reg *engine.Registry, h engine.Handler) {
	if err := reg.Register(h); err != nil {
		log.Fatal("handler registration failed", "job_type", h.Type(), "error", err)
	}
}
