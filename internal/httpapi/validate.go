package httpapi

import (
	"encoding/json"
	"fmt"
)

// validatePayload enforces the type-specific payload rules named in the
// job-create contract, once CreateJob has already confirmed jobType is
// registered. Types with no case here carry no payload shape requirement.
func validatePayload(jobType string, payload json.RawMessage) error {
	switch jobType {
	case "sleep":
		var body struct {
			Seconds *float64 `json:"seconds"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fmt.Errorf("payload must be an object: %w", err)
		}
		if body.Seconds == nil {
			return fmt.Errorf("payload.seconds is required")
		}
		if *body.Seconds <= 0 {
			return fmt.Errorf("payload.seconds must be > 0")
		}
	case "echo":
		var body struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return fmt.Errorf("payload must be an object: %w", err)
		}
		if body.Message == nil || *body.Message == "" {
			return fmt.Errorf("payload.message is required")
		}
	}
	return nil
}
