package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/atlasjobs/atlas/internal/domain"
	"github.com/atlasjobs/atlas/internal/pkg/apperrors"
)

// fakeStore and fakeQueue let the engine's loop logic be exercised
// without a real Postgres or Redis, mirroring how the job handlers
// package is tested purely in-process.

type fakeStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[uuid.UUID]*domain.Job)}
}

func (s *fakeStore) put(j *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.ID] = &cp
}

func (s *fakeStore) Insert(_ context.Context, job *domain.Job) error {
	s.put(job)
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

func (s *fakeStore) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "state":
			j.State = v.(domain.State)
		case "attempt":
			j.Attempt = v.(int)
		case "started_at":
			if v == nil {
				j.StartedAt = nil
			} else {
				t := v.(time.Time)
				j.StartedAt = &t
			}
		case "finished_at":
			if v == nil {
				j.FinishedAt = nil
			} else {
				t := v.(time.Time)
				j.FinishedAt = &t
			}
		case "duration_seconds":
			if v == nil {
				j.DurationSeconds = nil
			} else {
				d := v.(float64)
				j.DurationSeconds = &d
			}
		case "last_error":
			if v == nil {
				j.LastError = nil
			} else {
				e := v.(string)
				j.LastError = &e
			}
		case "result":
			j.Result = v.(datatypes.JSON)
		}
	}
	return nil
}

func (s *fakeStore) QueryStuck(_ context.Context, cutoff time.Time) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, j := range s.jobs {
		if j.State == domain.Running && j.StartedAt != nil && j.StartedAt.Before(cutoff) {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	entries []uuid.UUID
	locks   map[uuid.UUID]bool
	cond    *sync.Cond
}

func newFakeQueue() *fakeQueue {
	q := &fakeQueue{locks: make(map[uuid.UUID]bool)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *fakeQueue) Enqueue(_ context.Context, jobID uuid.UUID) error {
	q.mu.Lock()
	q.entries = append(q.entries, jobID)
	q.mu.Unlock()
	q.cond.Broadcast()
	return nil
}

func (q *fakeQueue) DequeueBlocking(ctx context.Context) (uuid.UUID, error) {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.cond.Broadcast()
		case <-stop:
		}
	}()
	defer close(stop)

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 {
		if ctx.Err() != nil {
			return uuid.Nil, ctx.Err()
		}
		q.cond.Wait()
	}
	id := q.entries[0]
	q.entries = q.entries[1:]
	return id, nil
}

func (q *fakeQueue) AcquireLock(_ context.Context, jobID uuid.UUID, _ time.Duration) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.locks[jobID] {
		return false, nil
	}
	q.locks[jobID] = true
	return true, nil
}

func (q *fakeQueue) ReleaseLock(_ context.Context, jobID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.locks, jobID)
	return nil
}

func (q *fakeQueue) Depth(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

func (q *fakeQueue) Close() error { return nil }
