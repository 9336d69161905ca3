package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/atlasjobs/atlas/internal/pkg/logger"
)

// testQueue connects to a real Redis instance, skipping (not failing) when
// TEST_REDIS_ADDR is unset, matching the store package's DSN-skip pattern.
func testQueue(t *testing.T) WorkQueue {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run queue integration tests")
	}
	t.Setenv("REDIS_ADDR", addr)
	t.Setenv("REDIS_QUEUE_NAME", "atlas:test:queue:"+uuid.NewString())

	l, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	q, err := New(l)
	if err != nil {
		t.Fatalf("queue.New: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestRedisQueue_EnqueueDequeue(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	id := uuid.New()
	if err := q.Enqueue(ctx, id); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("Depth: expected 1, got %d", depth)
	}

	dctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	got, err := q.DequeueBlocking(dctx)
	if err != nil {
		t.Fatalf("DequeueBlocking: %v", err)
	}
	if got != id {
		t.Fatalf("DequeueBlocking: expected %s, got %s", id, got)
	}
}

func TestRedisQueue_DequeueBlocking_ContextCancel(t *testing.T) {
	q := testQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := q.DequeueBlocking(ctx)
	if err == nil {
		t.Fatalf("DequeueBlocking: expected context cancellation error on empty queue")
	}
}

func TestRedisQueue_AdvisoryLock(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()
	id := uuid.New()

	ok, err := q.AcquireLock(ctx, id, 2*time.Second)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if !ok {
		t.Fatalf("AcquireLock: expected true on first acquire")
	}

	ok, err = q.AcquireLock(ctx, id, 2*time.Second)
	if err != nil {
		t.Fatalf("AcquireLock (second): %v", err)
	}
	if ok {
		t.Fatalf("AcquireLock: expected false while still held")
	}

	if err := q.ReleaseLock(ctx, id); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}

	ok, err = q.AcquireLock(ctx, id, 2*time.Second)
	if err != nil {
		t.Fatalf("AcquireLock (after release): %v", err)
	}
	if !ok {
		t.Fatalf("AcquireLock: expected true after release")
	}
}
