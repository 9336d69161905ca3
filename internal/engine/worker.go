package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/obs"
	"github.com/atlasjobs/atlas/internal/pkg/apperrors"
	"github.com/atlasjobs/atlas/internal/pkg/envutil"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
	"github.com/atlasjobs/atlas/internal/queue"
	"github.com/atlasjobs/atlas/internal/store"
)

/*
Worker drives jobs through the state machine: pop an id, take its
advisory lock, load the record, dispatch to a registered handler,
persist the outcome, and apply retry/backoff.

Mutual exclusion is entirely the queue's advisory lock; the worker
itself holds no in-process mutex. Multiple Worker instances (goroutines
or processes) may run the same loop concurrently against the same
store and queue; the lock guarantees at most one of them executes a
given job at a time, and the post-lock state check makes a stale
duplicate pop a harmless no-op.
*/
type Worker struct {
	log        *logger.Logger
	store      store.JobStore
	queue      queue.WorkQueue
	registry   *Registry
	lockTTL    time.Duration
	backoffCap float64
	metrics    *obs.Metrics
}

func NewWorker(baseLog *logger.Logger, s store.JobStore, q queue.WorkQueue, reg *Registry) *Worker {
	lockTTLSeconds := envutil.GetEnvAsInt("LOCK_TTL_SECONDS", 180)
	backoffCap := envutil.GetEnvAsFloat("BACKOFF_CAP_SECONDS", defaultBackoffCapSeconds)
	return &Worker{
		log:        baseLog.With("component", "Worker"),
		store:      s,
		queue:      q,
		registry:   reg,
		lockTTL:    time.Duration(lockTTLSeconds) * time.Second,
		backoffCap: backoffCap,
	}
}

// WithMetrics attaches a Metrics instance; nil disables instrumentation.
func (w *Worker) WithMetrics(m *obs.Metrics) *Worker {
	w.metrics = m
	return w
}

// Start launches WORKER_CONCURRENCY (default 4) goroutines, each running
// an independent runLoop, and blocks until ctx is cancelled and every
// goroutine has returned.
func (w *Worker) Start(ctx context.Context) error {
	concurrency := envutil.GetEnvAsInt("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w.log.Info("starting worker pool", "concurrency", concurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(gctx, workerID)
			return nil
		})
	}
	return g.Wait()
}

// runLoop implements the worker's per-iteration contract: pop, lock,
// load, dispatch, finalise, release. Every suspension point (blocking
// dequeue, handler execution, backoff sleep) respects ctx cancellation.
func (w *Worker) runLoop(ctx context.Context, workerID int) {
	log := w.log.With("worker_id", workerID)
	log.Info("worker loop started")

	for {
		if ctx.Err() != nil {
			log.Info("worker loop stopped")
			return
		}

		jobID, err := w.queue.DequeueBlocking(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker loop stopped")
				return
			}
			log.Warn("dequeue failed", "error", err)
			// Pause before retrying so a queue outage doesn't busy-spin.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		w.processOne(ctx, log, jobID)
	}
}

func (w *Worker) processOne(ctx context.Context, log *logger.Logger, jobID uuid.UUID) {
	acquired, err := w.queue.AcquireLock(ctx, jobID, w.lockTTL)
	if err != nil {
		log.Warn("acquire lock failed", "job_id", jobID, "error", err)
		return
	}
	if !acquired {
		// Another worker is (or was) processing this id.
		return
	}
	defer func() {
		if err := w.queue.ReleaseLock(ctx, jobID); err != nil {
			log.Warn("release lock failed", "job_id", jobID, "error", err)
		}
	}()

	job, err := w.store.Get(ctx, jobID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Warn("load job failed", "job_id", jobID, "error", err)
		}
		return
	}
	if job.State != domain.Pending && job.State != domain.Retrying {
		// Already completed or being handled via another path.
		return
	}

	handler, ok := w.registry.Get(job.Type)
	if !ok {
		if err := w.store.Update(ctx, jobID, map[string]any{
			"state":      domain.Failed,
			"last_error": fmt.Sprintf("Unsupported job type: %s", job.Type),
		}); err != nil {
			log.Warn("finalize unsupported type failed", "job_id", jobID, "error", err)
		}
		return
	}

	now := time.Now().UTC()
	if err := w.store.Update(ctx, jobID, map[string]any{
		"attempt":          job.Attempt + 1,
		"state":            domain.Running,
		"started_at":       now,
		"finished_at":      nil,
		"duration_seconds": nil,
		"last_error":       nil,
	}); err != nil {
		log.Warn("mark running failed", "job_id", jobID, "error", err)
		return
	}
	job.Attempt++
	job.StartedAt = &now
	if w.metrics != nil {
		w.metrics.JobAttempts.WithLabelValues(job.Type).Inc()
	}

	result, runErr := w.invokeHandler(ctx, handler, job)

	finished := time.Now().UTC()
	duration := finished.Sub(*job.StartedAt).Seconds()
	if w.metrics != nil {
		w.metrics.HandlerDuration.WithLabelValues(job.Type).Observe(duration)
	}

	if runErr == nil {
		if w.metrics != nil {
			w.metrics.JobOutcomes.WithLabelValues(job.Type, "success").Inc()
		}
		fields := map[string]any{
			"state":            domain.Success,
			"finished_at":      finished,
			"duration_seconds": duration,
		}
		if len(result) > 0 {
			fields["result"] = datatypes.JSON(result)
		}
		if err := w.store.Update(ctx, jobID, fields); err != nil {
			log.Warn("finalize success failed", "job_id", jobID, "error", err)
		}
		return
	}

	errMsg := runErr.Error()
	if job.RetriesRemain() {
		if w.metrics != nil {
			w.metrics.JobOutcomes.WithLabelValues(job.Type, "retrying").Inc()
		}
		if err := w.store.Update(ctx, jobID, map[string]any{
			"state":            domain.Retrying,
			"last_error":       errMsg,
			"finished_at":      finished,
			"duration_seconds": duration,
		}); err != nil {
			log.Warn("finalize retrying failed", "job_id", jobID, "error", err)
			return
		}

		delay := computeBackoffSeconds(job.RetryDelaySeconds, job.Attempt, w.backoffCap)
		if delay > 0 {
			select {
			case <-time.After(time.Duration(delay * float64(time.Second))):
			case <-ctx.Done():
				return
			}
		}
		if err := w.queue.Enqueue(ctx, jobID); err != nil {
			log.Warn("re-enqueue failed", "job_id", jobID, "error", err)
		}
		return
	}

	if w.metrics != nil {
		w.metrics.JobOutcomes.WithLabelValues(job.Type, "failed").Inc()
	}
	if err := w.store.Update(ctx, jobID, map[string]any{
		"state":            domain.Failed,
		"last_error":       errMsg,
		"finished_at":      finished,
		"duration_seconds": duration,
	}); err != nil {
		log.Warn("finalize failed state failed", "job_id", jobID, "error", err)
	}
}

// invokeHandler recovers a handler panic into a regular error so one
// misbehaving job type fails that job instead of crashing the worker.
func (w *Worker) invokeHandler(ctx context.Context, h Handler, job *domain.Job) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Run(ctx, json.RawMessage(job.Payload))
}
