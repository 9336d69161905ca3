package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atlasjobs/atlas/internal/engine"
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

	shutdownTracing := obs.InitTracing(ctx, log, "atlas-reaper")
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
	go obs.ServeMetrics(ctx, log)

	jobStore := store.NewJobStore(db, log)
	reaper := engine.NewReaper(log, jobStore, q).WithMetrics(metrics)

	log.Info("reaper starting")
	reaper.Start(ctx)
	log.Info("reaper stopped")
}
