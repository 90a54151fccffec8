// Package oort talks to the Oort record store over its GraphQL API. It
// implements the complaint, inspector, workload and assignment ports used by
// the assignment engine.
package oort

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultPendingLimit   = 50
	defaultInspectorLimit = 10
)

type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *slog.Logger
	now      func() time.Time

	pendingLimit   int
	inspectorLimit int
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLimits overrides how many pending complaints and inspectors one query
// returns. Non-positive values keep the defaults.
func WithLimits(pending, inspectors int) Option {
	return func(c *Client) {
		if pending > 0 {
			c.pendingLimit = pending
		}
		if inspectors > 0 {
			c.inspectorLimit = inspectors
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client for the Oort instance at baseURL. Requests are
// sent to {baseURL}/graphql with token as a bearer token.
func NewClient(baseURL, token string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		endpoint:       strings.TrimRight(baseURL, "/") + "/graphql",
		token:          token,
		http:           httpClient,
		logger:         slog.Default(),
		now:            time.Now,
		pendingLimit:   defaultPendingLimit,
		inspectorLimit: defaultInspectorLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do posts req and decodes data[field] into out.
func (c *Client) do(ctx context.Context, req request, field string, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", req.OperationName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", req.OperationName, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: Oort API returned %d: %s", req.OperationName, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parsing %s response: %w", req.OperationName, err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("%s: %s", req.OperationName, strings.Join(msgs, "; "))
	}
	raw, ok := parsed.Data[field]
	if !ok || string(raw) == "null" {
		return fmt.Errorf("%s: response has no %q field", req.OperationName, field)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s.%s: %w", req.OperationName, field, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
