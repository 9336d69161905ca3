// Package handlers provides the reference job handlers: echo and sleep.
// They exist to exercise the engine end to end and as a template for
// operators registering their own handlers.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
)

// Echo returns {"message": payload.message} unchanged, failing if the
// payload carries no message field.
type Echo struct{}

func (Echo) Type() string { return "echo" }

func (Echo) Run(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("echo: invalid payload: %w", err)
	}
	if in.Message == "" {
		return nil, fmt.Errorf("echo: payload.message is required")
	}
	return json.Marshal(map[string]string{"message": in.Message})
}
