package engine

import (
	"context"
	"time"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/obs"
	"github.com/atlasjobs/atlas/internal/pkg/envutil"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
	"github.com/atlasjobs/atlas/internal/queue"
	"github.com/atlasjobs/atlas/internal/store"
)

/*
Reaper detects jobs whose owning worker died mid-execution: a job left
in RUNNING with started_at older than running_timeout. It repairs the
record directly, without acquiring the job's advisory lock; the
cutoff is assumed wide enough that the original worker is almost
certainly gone. If it isn't, the worker's own post-lock state check
turns the resulting race into a harmless no-op rather than a double
execution.
*/
type Reaper struct {
	log            *logger.Logger
	store          store.JobStore
	queue          queue.WorkQueue
	scanInterval   time.Duration
	runningTimeout time.Duration
	metrics        *obs.Metrics
}

func NewReaper(baseLog *logger.Logger, s store.JobStore, q queue.WorkQueue) *Reaper {
	scanSeconds := envutil.GetEnvAsInt("REAPER_SCAN_INTERVAL_SECONDS", 5)
	timeoutSeconds := envutil.GetEnvAsInt("RUNNING_TIMEOUT_SECONDS", 300)
	return &Reaper{
		log:            baseLog.With("component", "Reaper"),
		store:          s,
		queue:          q,
		scanInterval:   time.Duration(scanSeconds) * time.Second,
		runningTimeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

// WithMetrics attaches a Metrics instance; nil disables instrumentation.
func (r *Reaper) WithMetrics(m *obs.Metrics) *Reaper {
	r.metrics = m
	return r
}

// Start runs the scan loop until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	r.log.Info("reaper started",
		"scan_interval", r.scanInterval,
		"running_timeout", r.runningTimeout,
	)
	ticker := time.NewTicker(r.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reaper stopped")
			return
		case <-ticker.C:
			r.scanOnce(ctx)
		}
	}
}

func (r *Reaper) scanOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.runningTimeout)

	stuck, err := r.store.QueryStuck(ctx, cutoff)
	if err != nil {
		r.log.Warn("query stuck jobs failed", "error", err)
		return
	}
	if len(stuck) > 0 {
		r.log.Info("reaping stuck jobs", "count", len(stuck))
	}

	for _, job := range stuck {
		r.reclaim(ctx, job)
	}
}

func (r *Reaper) reclaim(ctx context.Context, job *domain.Job) {
	if job.RetriesRemain() {
		if err := r.store.Update(ctx, job.ID, map[string]any{
			"state":      domain.Retrying,
			"last_error": "Worker timeout detected; requeued",
		}); err != nil {
			r.log.Warn("reclaim to retrying failed", "job_id", job.ID, "error", err)
			return
		}
		if err := r.queue.Enqueue(ctx, job.ID); err != nil {
			r.log.Warn("re-enqueue reclaimed job failed", "job_id", job.ID, "error", err)
		}
		if r.metrics != nil {
			r.metrics.JobsReaped.WithLabelValues("retrying").Inc()
		}
		return
	}

	now := time.Now().UTC()
	if err := r.store.Update(ctx, job.ID, map[string]any{
		"state":       domain.Failed,
		"last_error":  "Worker timeout detected; no retries left",
		"finished_at": now,
	}); err != nil {
		r.log.Warn("reclaim to failed failed", "job_id", job.ID, "error", err)
		return
	}
	if r.metrics != nil {
		r.metrics.JobsReaped.WithLabelValues("failed").Inc()
	}
}
