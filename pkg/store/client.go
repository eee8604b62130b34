package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the backend record store over HTTP. It is constructed
// explicitly and passed by reference; credentials live in the TokenStore
// rather than in process-wide state.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenStore sets the credential store.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New constructs a store client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collection scopes operations to a named record collection.
func (c *Client) Collection(name string) *Collection {
	return &Collection{client: c, name: name}
}

// APIError is a non-2xx response from the store.
type APIError struct {
	Status int
	Code   string
}

// Error returns a terse description without echoing backend response text.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store request failed: status %d (%s)", e.Status, e.Code)
	}
	return fmt.Sprintf("store request failed: status %d", e.Status)
}

// IsNotFound reports whether err is a store 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return asAPIError(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) send(ctx context.Context, method, path string, query map[string]string, body io.Reader, contentType string, out interface{}) error {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build store request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if token, err := c.tokens.Load(); err == nil && token != "" {
		req.Header.Set("Authorization", token)
	}

	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store call %s %s: %w", method, path, err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode}
		var payload struct {
			Code json.Number `json:"code"`
		}
		if err := json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&payload); err == nil {
			apiErr.Code = payload.Code.String()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode store response: %w", err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode store request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	return c.send(ctx, method, path, nil, reader, "application/json", out)
}
