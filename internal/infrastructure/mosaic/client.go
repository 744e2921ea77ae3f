// Package mosaic talks to the Mosaic hosted platform, which runs SQL for a
// project over HTTP, and implements the user and token stores on top of it.
package mosaic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.mosaic.site/v1/project"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// APIError is returned for any non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mosaic: status %d: %s", e.StatusCode, e.Body)
}

// SQLResult holds the rows of one statement, each still JSON encoded so the
// caller can decode into its own row type.
type SQLResult struct {
	Rows []json.RawMessage `json:"rows"`
}

type Client struct {
	baseURL string
	slug    string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL, slug, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		slug:    slug,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sqlRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params,omitempty"`
}

// ExecuteSQL runs one statement with positional ($1, $2, ...) parameters.
func (c *Client) ExecuteSQL(ctx context.Context, query string, params ...any) (*SQLResult, error) {
	body, err := json.Marshal(sqlRequest{Query: query, Params: params})
	if err != nil {
		return nil, fmt.Errorf("mosaic: encode sql request: %w", err)
	}

	var result SQLResult
	if err := c.do(ctx, http.MethodPost, "/sql", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping fetches the project info endpoint, which needs a valid key and slug.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/info", nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	u := c.baseURL + "/" + url.PathEscape(c.slug) + endpoint

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("mosaic: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mosaic: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mosaic: decode %s response: %w", endpoint, err)
	}
	return nil
}

// InitSchema applies DDL statements in order, stopping at the first failure.
func (c *Client) InitSchema(ctx context.Context, statements []string) error {
	for i, stmt := range statements {
		if _, err := c.ExecuteSQL(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
