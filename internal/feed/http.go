package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// submission outcomes.
const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// postSample submits one sample payload and classifies the outcome.
func (c *httpClient) postSample(ctx context.Context, url string, body any) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return resultFailed, fmt.Errorf("failed to marshal sample: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return resultFailed, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return resultFailed, fmt.Errorf("failed to submit sample: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resultFailed, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		return resultAccepted, nil
	case http.StatusOK:
		var ack ackResponse
		if err := json.Unmarshal(raw, &ack); err == nil && ack.Duplicate {
			return resultDuplicate, nil
		}
		return resultAccepted, nil
	default:
		return resultFailed, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}
}

// checkHealth verifies the target service is reachable.
func (c *httpClient) checkHealth(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service not healthy: status %d", resp.StatusCode)
	}
	return nil
}

// fetchState reads the current cognitive state, if one exists yet.
func (c *httpClient) fetchState(ctx context.Context, baseURL string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/state", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var state map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}
