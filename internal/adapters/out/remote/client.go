// Package remote is the JSON-over-HTTP plumbing shared by the device and
// identity clients: bearer propagation, per-call timeouts, tracing and
// classification of failed calls.
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
	"strings"
	"time"

	"orders/internal/pkg/requestctx"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 5 * time.Second
	maxErrorBodyLen = 64 << 10
)

// Config describes one downstream service.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ServiceToken is sent when the caller's context carries no bearer token.
	ServiceToken string
}

// Client issues JSON requests against one base URL.
type Client struct {
	baseURL      string
	timeout      time.Duration
	serviceToken string
	http         *http.Client
}

// NewClient validates the base URL and wraps the transport with otelhttp.
// A non-positive timeout becomes 5s.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("remote: invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:      base,
		timeout:      timeout,
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// Do sends body as JSON to path and decodes a 2xx response into out. out may
// be nil. Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Failure: FailureInternal, Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Failure: FailureInternal, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Failure: FailureUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Failure:    classifyStatus(resp.StatusCode),
			Message:    extractMessage(raw),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Error{Op: op, StatusCode: resp.StatusCode, Failure: FailureUnavailable, Cause: err}
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Failure: FailureInternal, Message: "malformed response body", Cause: err}
	}
	return nil
}

func (c *Client) bearer(ctx context.Context) string {
	if token, ok := requestctx.BearerToken(ctx); ok {
		return token
	}
	return c.serviceToken
}

// extractMessage returns the "message" field of a JSON error body, if any.
func extractMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
