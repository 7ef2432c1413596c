// Package rest reads and writes the entity tables through a PostgREST
// endpoint, as exposed by a hosted Supabase project.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aethra/acueducto/internal/config"
	"github.com/aethra/acueducto/internal/errors"
	"github.com/aethra/acueducto/internal/logging"
	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

const restPath = "/rest/v1/"

// Client is a store.Store backed by PostgREST. It makes exactly one HTTP
// request per call and never retries.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for cfg.URL authenticated with cfg.APIKey
func New(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, errors.NewValidationError("backend", "backend url and api key are required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, errors.NewValidationError("backend.url", fmt.Sprintf("invalid backend url: %v", err))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/") + restPath,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// HTTPClient exposes the transport, mainly for tests
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// apiError is the PostgREST error body
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// request describes one call against a table
type request struct {
	method string
	table  string
	params url.Values
	body   interface{}
}

// do executes r and decodes a successful response into out, which may be nil
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	var body io.Reader
	if r.body != nil {
		b, err := sonic.Marshal(r.body)
		if err != nil {
			return errors.NewBadRequestError(fmt.Sprintf("invalid %s payload: %v", r.table, err))
		}
		body = bytes.NewReader(b)
	}

	target := c.baseURL + r.table
	if len(r.params) > 0 {
		target += "?" + r.params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return errors.NewFetchError(r.table, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch r.method {
	case http.MethodPost, http.MethodPatch, http.MethodDelete:
		// writes echo the affected rows so misses can be detected
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewFetchError(r.table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewFetchError(r.table, fmt.Errorf("failed to read response body: %w", err))
	}

	logging.Get().WithFields(logrus.Fields{
		"method":   r.method,
		"table":    r.table,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("rest: backend call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(r.table, resp, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return errors.NewFetchError(r.table, fmt.Errorf("invalid response body: %w", err))
	}
	return nil
}

// statusError maps a non-2xx response. Unique violations become conflicts;
// everything else is a fetch error carrying the backend's message.
func (c *Client) statusError(table string, resp *http.Response, raw []byte) error {
	var body apiError
	msg := strings.TrimSpace(string(raw))
	if err := sonic.Unmarshal(raw, &body); err == nil && body.Message != "" {
		msg = body.Message
		if body.Details != "" {
			msg += " (" + body.Details + ")"
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusConflict || body.Code == "23505" {
		return errors.NewConflictError(table)
	}
	return errors.NewFetchError(table, fmt.Errorf("%s: %s", resp.Status, msg))
}

// selectAll builds the query for a filtered, ordered read
func selectAll(order string, filters ...string) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	if order != "" {
		q.Set("order", order)
	}
	for i := 0; i+1 < len(filters); i += 2 {
		q.Set(filters[i], "eq."+filters[i+1])
	}
	return q
}

func list[T any](ctx context.Context, c *Client, table, order string, filters ...string) ([]T, error) {
	var rows []T
	err := c.do(ctx, request{method: http.MethodGet, table: table, params: selectAll(order, filters...)}, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// getOne fetches the single row where column equals value
func getOne[T any](ctx context.Context, c *Client, table, column, value, resource string) (*T, error) {
	params := selectAll("", column, value)
	params.Set("limit", "1")

	var rows []T
	if err := c.do(ctx, request{method: http.MethodGet, table: table, params: params}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewNotFoundError(resource)
	}
	return &rows[0], nil
}

// write sends body and copies the returned representation back into dst.
// A PATCH or DELETE that matched no row is a NotFoundError.
func write[T any](ctx context.Context, c *Client, method, table string, params url.Values, body interface{}, dst *T, resource string) error {
	var rows []T
	if err := c.do(ctx, request{method: method, table: table, params: params, body: body}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		if method == http.MethodPost {
			return nil
		}
		return errors.NewNotFoundError(resource)
	}
	if dst != nil {
		*dst = rows[0]
	}
	return nil
}
