// Package store implements the Job Store: transactional CRUD on Job
// records keyed by id, the sole source of truth for job state.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/pkg/apperrors"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
)

type JobStore interface {
	// Insert fails if a job with this id already exists.
	Insert(ctx context.Context, job *domain.Job) error
	// Get returns apperrors.ErrNotFound if no such job exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	// Update applies fields as a single committed UPDATE statement.
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// QueryStuck returns jobs RUNNING since before cutoff, for the reaper.
	QueryStuck(ctx context.Context, cutoff time.Time) ([]*domain.Job, error)
}

type jobStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobStore(db *gorm.DB, baseLog *logger.Logger) JobStore {
	return &jobStore{db: db, log: baseLog.With("component", "JobStore")}
}

func (s *jobStore) Insert(ctx context.Context, job *domain.Job) error {
	if job == nil {
		return fmt.Errorf("insert: nil job")
	}
	err := s.db.WithContext(ctx).Create(job).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return nil
}

func (s *jobStore) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *jobStore) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&domain.Job{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update job %s: %w", id, res.Error)
	}
	return nil
}

func (s *jobStore) QueryStuck(ctx context.Context, cutoff time.Time) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := s.db.WithContext(ctx).
		Where("state = ? AND started_at IS NOT NULL AND started_at < ?", domain.Running, cutoff).
		Order("started_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("query stuck jobs: %w", err)
	}
	return jobs, nil
}

// isUniqueViolation matches the Postgres unique-constraint SQLSTATE
// (23505) without importing the pgconn error type directly, so this
// compiles against any gorm postgres driver version.
func isUniqueViolation(err error) bool {
	type sqlStater interface{ SQLState() string }
	var pgErr sqlStater
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
