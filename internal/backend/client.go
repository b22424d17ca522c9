// Package backend reads per-quarter dimension, outcome and initiative rows
// from the external dashboard backend and selects rows by period.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
	"golang.org/x/time/rate"
)

// Row is one backend record. Field names vary between deployments, so rows
// stay untyped and are read through the graph coercion helpers.
type Row map[string]any

// Client fetches row sets from the backend with rate limiting
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a backend client
func NewClient(cfg config.BackendConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.ConfigError("backend base url is not configured (set BACKEND_BASE_URL)")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(limit), limit),
		logger:      slog.Default().With("component", "backend"),
	}, nil
}

// Dimensions returns the per-quarter dimension rows
func (c *Client) Dimensions(ctx context.Context) ([]Row, error) {
	return c.fetchRows(ctx, "dimensions")
}

// Outcomes returns the per-quarter outcome rows
func (c *Client) Outcomes(ctx context.Context) ([]Row, error) {
	return c.fetchRows(ctx, "outcomes")
}

// Initiatives returns the per-quarter initiative rows
func (c *Client) Initiatives(ctx context.Context) ([]Row, error) {
	return c.fetchRows(ctx, "initiatives")
}

func (c *Client) fetchRows(ctx context.Context, resource string) ([]Row, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.ExternalErrorf(err, "rate limiter: %s", resource)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "build request for %s", resource)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "fetch %s", resource)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "read %s response", resource)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ExternalErrorf(
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
			"backend returned an error for %s", resource)
	}

	rows, err := decodeRows(body, resource)
	if err != nil {
		return nil, errors.ExternalErrorf(err, "decode %s", resource)
	}

	c.logger.Debug("backend rows fetched",
		"resource", resource,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds())
	return rows, nil
}

// decodeRows accepts a bare array or an object wrapping it under "data"
// or under the resource name
func decodeRows(body []byte, resource string) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range []string{"data", resource} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	return []Row{}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
