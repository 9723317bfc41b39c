package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"chat-client/internal/metrics"
	"chat-client/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized means the session is absent or expired (HTTP 401/403).
	// Callers redirect to the login page instead of showing an error.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrNotFound maps HTTP 404 responses.
	ErrNotFound = errors.New("not found")
)

// Error is an application-level failure: the server answered but flagged the
// operation as unsuccessful. Message carries the server-supplied text, if any.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "request failed"
	}
	return e.Message
}

// Client talks to the messenger HTTP API. Authentication is a session cookie
// kept in the jar, so one Client represents one logged-in session.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given server base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// do issues the request with a fresh X-Request-ID and maps the HTTP status.
// When out is non-nil the body is decoded into it.
func (c *Client) do(ctx context.Context, endpoint string, req *http.Request, out interface{}) error {
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RequestsTotal.WithLabelValues(endpoint, "unauthorized").Inc()
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return ErrNotFound
	case resp.StatusCode >= 400:
		metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &Error{Message: apiErr.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return fmt.Errorf("%s: decode response: %w", endpoint, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	metrics.RequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) postForm(ctx context.Context, endpoint, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", endpoint, err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, endpoint, req, out)
}

func (c *Client) delete(ctx context.Context, endpoint, path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, req, out)
}
