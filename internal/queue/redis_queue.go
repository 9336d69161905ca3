// Package queue implements the Work Queue: a FIFO of job ids with blocking
// pop and advisory per-id TTL locks, backed by Redis.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/atlasjobs/atlas/internal/pkg/envutil"
	"github.com/atlasjobs/atlas/internal/pkg/logger"
)

type WorkQueue interface {
	// Enqueue appends a job id. Duplicates are not filtered out: the
	// per-job lock and the worker's post-lock state check make a
	// duplicate pop a no-op.
	Enqueue(ctx context.Context, jobID uuid.UUID) error
	// DequeueBlocking blocks until an entry is available or ctx is done.
	DequeueBlocking(ctx context.Context) (uuid.UUID, error)
	// AcquireLock is an atomic set-if-absent with TTL.
	AcquireLock(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error)
	// ReleaseLock is a best-effort delete; safe if already expired.
	ReleaseLock(ctx context.Context, jobID uuid.UUID) error
	// Depth reports the current queue length, for metrics/health.
	Depth(ctx context.Context) (int64, error)
	Close() error
}

type redisQueue struct {
	log   *logger.Logger
	rdb   *goredis.Client
	key   string
	owner string
}

// New connects to Redis using REDIS_ADDR / REDIS_QUEUE_NAME, mirroring the
// teacher's env-driven Redis client construction (internal/clients/redis).
func New(baseLog *logger.Logger) (WorkQueue, error) {
	addr := envutil.GetEnv("REDIS_ADDR", "localhost:6379")
	queueName := envutil.GetEnv("REDIS_QUEUE_NAME", "atlas:queue:jobs")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisQueue{
		log:   baseLog.With("component", "WorkQueue"),
		rdb:   rdb,
		key:   queueName,
		owner: uuid.NewString(),
	}, nil
}

func (q *redisQueue) Enqueue(ctx context.Context, jobID uuid.UUID) error {
	if err := q.rdb.RPush(ctx, q.key, jobID.String()).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobID, err)
	}
	return nil
}

// DequeueBlocking uses BLPOP with no timeout so it blocks indefinitely,
// waking only on a new entry or context cancellation. go-redis cancels the
// underlying connection when ctx is done, which surfaces as ctx.Err() here.
func (q *redisQueue) DequeueBlocking(ctx context.Context) (uuid.UUID, error) {
	res, err := q.rdb.BLPop(ctx, 0, q.key).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return uuid.Nil, ctx.Err()
		}
		return uuid.Nil, fmt.Errorf("dequeue blocking: %w", err)
	}
	// BLPop returns [key, value].
	if len(res) != 2 {
		return uuid.Nil, fmt.Errorf("dequeue blocking: unexpected reply %v", res)
	}
	id, err := uuid.Parse(res[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("dequeue blocking: malformed job id %q: %w", res[1], err)
	}
	return id, nil
}

func lockKey(jobID uuid.UUID) string {
	return "atlas:lock:job:" + jobID.String()
}

func (q *redisQueue) AcquireLock(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := q.rdb.SetNX(ctx, lockKey(jobID), q.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", jobID, err)
	}
	return ok, nil
}

func (q *redisQueue) ReleaseLock(ctx context.Context, jobID uuid.UUID) error {
	if err := q.rdb.Del(ctx, lockKey(jobID)).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", jobID, err)
	}
	return nil
}

func (q *redisQueue) Depth(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return n, nil
}

func (q *redisQueue) Close() error {
	return q.rdb.Close()
}
