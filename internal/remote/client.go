// Package remote is the client for the hosted row store that is the
// source of truth for pantry and shopping data. It speaks the store's
// REST interface for table operations and its auth endpoints for
// session management. Every table operation is filtered to the
// authenticated user's rows.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoSession is returned when a table operation is attempted without
// an authenticated session.
var ErrNoSession = errors.New("remote: no active session")

// Config holds remote store configuration.
type Config struct {
	// BaseURL is the project root, e.g. https://xyz.supabase.co
	BaseURL string
	// APIKey is the project's public (anon) API key.
	APIKey string
}

// Client talks to the remote store. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	sessions sessionState
}

// NewClient creates a remote store client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// restURL builds a table endpoint URL with the given query filters.
func (c *Client) restURL(table string, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doTable performs an authenticated table request. The response body is
// returned for GETs; write requests ask for a minimal response.
func (c *Client) doTable(ctx context.Context, method, rawURL string, payload any) ([]byte, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, rawURL, resp.StatusCode, truncate(data, 200))
	}

	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
