// Package domain holds the Job record and its lifecycle states, the
// single source of truth shared by the store, queue, worker, reaper, and
// HTTP layers.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type State string

const (
	Pending  State = "PENDING"
	Running  State = "RUNNING"
	Success  State = "SUCCESS"
	Failed   State = "FAILED"
	Retrying State = "RETRYING"
)

// Job is the persistent record described by the job lifecycle engine.
// Every field after ID/Type is mutated exclusively by whichever worker
// holds the advisory lock for this job, or by the reaper for timed-out
// RUNNING jobs, never directly by the HTTP layer once the row exists.
type Job struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Type               string          `gorm:"column:type;not null" json:"type"`
	State              State           `gorm:"column:state;not null;index" json:"state"`
	Payload            datatypes.JSON  `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	Result             datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result,omitempty"`
	Attempt            int             `gorm:"column:attempt;not null;default:0" json:"attempt"`
	MaxRetries         int             `gorm:"column:max_retries;not null;default:0" json:"max_retries"`
	RetryDelaySeconds  float64         `gorm:"column:retry_delay_seconds;not null;default:0" json:"retry_delay_seconds"`
	LastError          *string         `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt          time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	StartedAt          *time.Time      `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt         *time.Time      `gorm:"column:finished_at" json:"finished_at,omitempty"`
	DurationSeconds    *float64        `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// NewJob constructs a PENDING job ready for Insert. It does not enqueue;
// enqueueing is the submission layer's job, after the insert commits.
func NewJob(jobType string, payload json.RawMessage, maxRetries int, retryDelaySeconds float64) *Job {
	if payload == nil {
		payload = json.RawMessage("{}")
	}
	return &Job{
		ID:                uuid.New(),
		Type:              jobType,
		State:             Pending,
		Payload:           datatypes.JSON(payload),
		Attempt:           0,
		MaxRetries:        maxRetries,
		RetryDelaySeconds: retryDelaySeconds,
		CreatedAt:         time.Now().UTC(),
	}
}

// RetriesRemain reports whether the job may be attempted again after the
// current (just-finished) attempt: attempt <= max_retries.
func (j *Job) RetriesRemain() bool {
	return j.Attempt <= j.MaxRetries
}
