package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atlasjobs/atlas/internal/pkg/httpx"
)

const maxClientRetries = 3

type apiClient struct {
	baseAddr string
	http     *http.Client
}

func newAPIClient(baseAddr string) *apiClient {
	return &apiClient{baseAddr: baseAddr, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *apiClient) createJob(body map[string]any) (map[string]any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.doWithRetry(func() (*http.Response, error) {
		return c.http.Post(c.baseAddr+"/jobs", "application/json", bytes.NewReader(buf))
	}, "POST /jobs")
}

func (c *apiClient) getJob(id string) (map[string]any, error) {
	return c.doWithRetry(func() (*http.Response, error) {
		return c.http.Get(c.baseAddr + "/jobs/" + id)
	}, fmt.Sprintf("GET /jobs/%s", id))
}

// doWithRetry retries transient failures: connection timeouts and 5xx/429
// responses from the server. Sleeps honor a Retry-After header when the
// server sends one, otherwise back off with +/-20% jitter.
func (c *apiClient) doWithRetry(do func() (*http.Response, error), label string) (map[string]any, error) {
	backoff := 250 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= maxClientRetries; attempt++ {
		resp, err := do()
		if err != nil {
			if attempt == maxClientRetries || !httpx.IsRetryableError(err) {
				return nil, fmt.Errorf("%s: %w", label, err)
			}
			lastErr = err
			time.Sleep(httpx.JitterSleep(backoff))
			backoff *= 2
			continue
		}

		if attempt < maxClientRetries && httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			sleepFor := httpx.RetryAfterDuration(resp, httpx.JitterSleep(backoff), 30*time.Second)
			resp.Body.Close()
			time.Sleep(sleepFor)
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		return decodeOrError(resp)
	}
	return nil, fmt.Errorf("%s: %w", label, lastErr)
}

func decodeOrError(resp *http.Response) (map[string]any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, string(raw))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
