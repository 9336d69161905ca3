package engine

import (
	"math"
	"math/rand"
)

// defaultBackoffCapSeconds bounds the raw exponential delay before jitter
// is applied, so a misconfigured retry_delay_seconds can't leave a job
// waiting for hours between attempts. Overridden by BACKOFF_CAP_SECONDS.
const defaultBackoffCapSeconds = 30.0

// computeBackoffSeconds implements full-jitter exponential backoff.
// attempt is 1-based: attempt=1 uses baseDelay, attempt=2 uses 2x,
// attempt=3 uses 4x, capped at capSeconds, then a uniform random delay
// in [0, raw) is returned so many jobs retrying at once don't all wake
// on the same tick.
func computeBackoffSeconds(baseDelay float64, attempt int, capSeconds float64) float64 {
	if baseDelay <= 0 {
		return 0
	}
	raw := baseDelay * math.Pow(2, float64(attempt-1))
	if raw > capSeconds {
		raw = capSeconds
	}
	return rand.Float64() * raw
}
