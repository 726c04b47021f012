package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FeedMonitor/internal/domain"
	"FeedMonitor/internal/ports"
)

// Client talks to the external embedding service over HTTP. The
// service's internal model is opaque; it maps text to candidate
// (markId, similarity) pairs.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ ports.MatchOracle = (*Client)(nil)

// NewClient creates a reusable HTTP client for the oracle endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Score submits item text and decodes the candidate list.
func (c *Client) Score(ctx context.Context, text string) ([]domain.Candidate, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned %s", resp.Status)
	}

	var payload struct {
		Matches []domain.Candidate `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return payload.Matches, nil
}
