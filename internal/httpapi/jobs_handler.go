package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/engine"
	"github.com/atlasjobs/atlas/internal/obs"
	"github.com/atlasjobs/atlas/internal/pkg/apperrors"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
	"github.com/atlasjobs/atlas/internal/queue"
	"github.com/atlasjobs/atlas/internal/store"
)

type JobsHandler struct {
	log      *logger.Logger
	store    store.JobStore
	queue    queue.WorkQueue
	registry *engine.Registry
	metrics  *obs.Metrics
}

// NewJobsHandler wires the submission layer to the same handler registry
// the worker dispatches against, so unsupported job types are rejected
// here with 400 instead of surfacing as a FAILED job once dequeued.
func NewJobsHandler(baseLog *logger.Logger, s store.JobStore, q queue.WorkQueue, reg *engine.Registry) *JobsHandler {
	return &JobsHandler{log: baseLog.With("component", "JobsHandler"), store: s, queue: q, registry: reg}
}

// WithMetrics attaches a Metrics instance; nil disables instrumentation.
func (h *JobsHandler) WithMetrics(m *obs.Metrics) *JobsHandler {
	h.metrics = m
	return h
}

type createJobRequest struct {
	Type              string          `json:"type"`
	Payload           json.RawMessage `json:"payload"`
	MaxRetries        int             `json:"max_retries"`
	RetryDelaySeconds float64         `json:"retry_delay_seconds"`
}

// CreateJob handles POST /jobs: validates, inserts PENDING, enqueues.
func (h *JobsHandler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if req.Type == "" {
		respondError(c, http.StatusBadRequest, "invalid_type", errors.New("type is required"))
		return
	}
	if !h.registry.Has(req.Type) {
		respondError(c, http.StatusBadRequest, "unknown_type", fmt.Errorf("unsupported job type %q", req.Type))
		return
	}
	if req.MaxRetries < 0 {
		respondError(c, http.StatusBadRequest, "invalid_max_retries", errors.New("max_retries must be >= 0"))
		return
	}
	if req.RetryDelaySeconds < 0 {
		respondError(c, http.StatusBadRequest, "invalid_retry_delay", errors.New("retry_delay_seconds must be >= 0"))
		return
	}
	if err := validatePayload(req.Type, req.Payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	job := domain.NewJob(req.Type, req.Payload, req.MaxRetries, req.RetryDelaySeconds)

	ctx := c.Request.Context()
	if err := h.store.Insert(ctx, job); err != nil {
		h.log.Error("insert job failed", "job_id", job.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "insert_failed", err)
		return
	}
	if err := h.queue.Enqueue(ctx, job.ID); err != nil {
		h.log.Error("enqueue job failed", "job_id", job.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "enqueue_failed", err)
		return
	}
	if h.metrics != nil {
		h.metrics.JobsSubmitted.Inc()
	}

	respondOK(c, job)
}

// GetJob handles GET /jobs/:id.
func (h *JobsHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondError(c, http.StatusNotFound, "job_not_found", err)
			return
		}
		h.log.Error("get job failed", "job_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}

	respondOK(c, job)
}
