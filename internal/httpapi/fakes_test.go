package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/pkg/apperrors"
)

type fakeStore struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*domain.Job
	failGet bool
}

func newFakeStore() *fakeStore { return &fakeStore{jobs: make(map[uuid.UUID]*domain.Job)} }

func (s *fakeStore) Insert(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return apperrors.ErrAlreadyExists
	}
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) Update(_ context.Context, _ uuid.UUID, _ map[string]any) error { return nil }

func (s *fakeStore) QueryStuck(_ context.Context, _ time.Time) ([]*domain.Job, error) {
	return nil, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	entries []uuid.UUID
	failing bool
}

func newFakeQueue() *fakeQueue { return &fakeQueue{} }

func (q *fakeQueue) Enqueue(_ context.Context, jobID uuid.UUID) error {
	if q.failing {
		return context.DeadlineExceeded
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, jobID)
	return nil
}

func (q *fakeQueue) DequeueBlocking(ctx context.Context) (uuid.UUID, error) {
	<-ctx.Done()
	return uuid.Nil, ctx.Err()
}

func (q *fakeQueue) AcquireLock(_ context.Context, _ uuid.UUID, _ time.Duration) (bool, error) {
	return true, nil
}

func (q *fakeQueue) ReleaseLock(_ context.Context, _ uuid.UUID) error { return nil }

func (q *fakeQueue) Depth(_ context.Context) (int64, error) {
	if q.failing {
		return 0, context.DeadlineExceeded
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

func (q *fakeQueue) Close() error { return nil }
