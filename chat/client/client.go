// Package client is the HTTP client the chatbot uses to reach the
// backend task API. Responses are treated as untrusted input and errors
// are translated into a small taxonomy the dispatcher can map to
// conversational messages.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// ErrUnauthorized is returned for 401 responses; the bearer token is
// missing, invalid or expired.
var ErrUnauthorized = fmt.Errorf("authentication failed")

// ErrNotFound is returned for 404 responses.
var ErrNotFound = fmt.Errorf("resource not found")

// StatusError carries the server's message for other non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Code, e.Message)
}

// Client calls the backend REST API on behalf of one authenticated user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client bound to one bearer token.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	path := endpoint
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

// Patch performs a PATCH request; body may be nil.
func (c *Client) Patch(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	return c.do(ctx, http.MethodPatch, endpoint, body)
}

// Delete performs a DELETE request; a 204 yields a nil payload.
func (c *Client) Delete(ctx context.Context, endpoint string) error {
	_, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body map[string]any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if err := translateStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}
	if len(data) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid response body: %w", err)
	}
	return out, nil
}

func translateStatus(code int, body []byte) error {
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Code: code, Message: errorMessage(body)}
	}
}

// errorMessage pulls the human-readable message out of an error body of
// the form {error, message, details?}; unknown shapes fall back to the
// raw text.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := sonic.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "unknown error"
	}
	return text
}
