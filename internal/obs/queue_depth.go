package obs

import (
	"context"
	"time"

	"github.com/atlasjobs/atlas/internal/pkg/logger"
	"github.com/atlasjobs/atlas/internal/queue"
)

// PollQueueDepth periodically samples the work queue's length into the
// QueueDepth gauge until ctx is cancelled. Depth isn't pushed by the
// queue itself, so something has to poll it; this runs as a background
// goroutine in whichever process owns the queue handle.
func PollQueueDepth(ctx context.Context, log *logger.Logger, q queue.WorkQueue, m *Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := q.Depth(ctx)
			if err != nil {
				log.Warn("queue depth poll failed", "error", err)
				continue
			}
			m.QueueDepth.Set(float64(depth))
		}
	}
}
