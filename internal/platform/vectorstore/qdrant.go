// Package vectorstore provides similarity search against a Qdrant server.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Point is one search hit with its payload.
type Point struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Searcher runs vector similarity searches.
type Searcher interface {
	Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]Point, error)
}

// Client talks to the Qdrant REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Qdrant client. apiKey may be empty for unsecured
// local instances.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchRequest struct {
	Vector         []float32 `json:"vector"`
	Limit          int       `json:"limit"`
	WithPayload    bool      `json:"with_payload"`
	ScoreThreshold float64   `json:"score_threshold,omitempty"`
}

type searchResponse struct {
	Result []Point `json:"result"`
	Status any     `json:"status"`
}

// Search returns up to limit points from the collection ranked by cosine
// similarity, dropping anything under scoreThreshold.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, scoreThreshold float64) ([]Point, error) {
	body, err := json.Marshal(searchRequest{
		Vector:         vector,
		Limit:          limit,
		WithPayload:    true,
		ScoreThreshold: scoreThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vectorstore: search failed with status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("vectorstore: unmarshal response: %w", err)
	}
	return parsed.Result, nil
}

// Healthy reports whether the Qdrant server answers its readiness probe.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/readyz", nil)
	if err != nil {
		return false
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
