package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Sleep blocks for payload.seconds, returning no result. It exists to
// exercise worker concurrency and context cancellation on
// shutdown without depending on any external side effect.
type Sleep struct{}

func (Sleep) Type() string { return "sleep" }

func (Sleep) Run(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Seconds float64 `json:"seconds"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("sleep: invalid payload: %w", err)
	}
	if in.Seconds < 0 {
		return nil, fmt.Errorf("sleep: payload.seconds must be non-negative")
	}

	timer := time.NewTimer(time.Duration(in.Seconds * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
