package client

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

	"go.uber.org/zap"

	"resume-builder/internal/shared/server/respond"
)

const (
	defaultAttempts       = 3
	defaultBaseDelay      = 250 * time.Millisecond
	defaultAttemptTimeout = 15 * time.Second
	apiPrefix             = "/api/v1"
)

// Client talks to the résumé builder API.
type Client struct {
	baseURL        string
	token          string
	http           *http.Client
	attempts       int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	log            *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetry sets the attempt budget and the first backoff delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.baseDelay = baseDelay
	}
}

// WithAttemptTimeout bounds every individual attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) { c.attemptTimeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for the server at baseURL (scheme and host).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		attempts:       defaultAttempts,
		baseDelay:      defaultBaseDelay,
		attemptTimeout: defaultAttemptTimeout,
		log:            zap.NewNop(),
		sleep:          sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts <= 0 {
		c.attempts = 1
	}
	return c
}

// do sends a JSON request and decodes a 2xx body into out. Network errors
// and 5xx responses are retried with exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
	}

	delay := c.baseDelay
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		status, err := c.once(ctx, c.attemptBudget(ctx, c.attempts-attempt+1, delay), method, path, payload, out)
		if err == nil {
			return status, nil
		}
		lastErr = err
		if attempt == c.attempts || !retryable(ctx, err) {
			break
		}
		c.log.Warn("client.retry",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return 0, err
		}
		delay *= 2
	}
	return 0, lastErr
}

// attemptBudget caps one attempt so that, under a caller deadline, the
// remaining attempts and their backoff still fit.
func (c *Client) attemptBudget(ctx context.Context, left int, delay time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok || left <= 1 {
		return c.attemptTimeout
	}
	remaining := time.Until(deadline)
	var backoff time.Duration
	for i := 1; i < left; i++ {
		backoff += delay
		delay *= 2
	}
	share := (remaining - backoff) / time.Duration(left)
	if share <= 0 {
		share = remaining / time.Duration(left)
	}
	return min(share, c.attemptTimeout)
}

func (c *Client) once(ctx context.Context, timeout time.Duration, method, path string, payload []byte, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb respond.ErrorResponse
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Message
			apiErr.Issues = eb.Issues
		}
		return resp.StatusCode, apiErr
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %v", errMalformed, err)
		}
	}
	return resp.StatusCode, nil
}

var errMalformed = errors.New("malformed response body")

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, errMalformed) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	// Everything else failed before a response arrived: dial errors,
	// resets, or the per-attempt timeout.
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func escape(id string) string { return url.PathEscape(id) }
