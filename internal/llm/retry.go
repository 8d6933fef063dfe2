package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-builder/internal/shared/telemetry"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 300 * time.Millisecond
)

// RetryingClient retries transient failures with exponential backoff.
type RetryingClient struct {
	Base      Client
	Attempts  int
	BaseDelay time.Duration
	Provider  string

	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps base with up to three attempts.
func WithRetry(base Client, provider string) *RetryingClient {
	return &RetryingClient{Base: base, Attempts: defaultRetryAttempts, BaseDelay: defaultRetryBaseDelay, Provider: provider}
}

func (r *RetryingClient) Complete(ctx context.Context, req Request) (string, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := r.BaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := r.Base.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == attempts || !ShouldRetry(err) {
			break
		}
		telemetry.Warn("llm.retry", map[string]any{
			"provider": r.Provider,
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"error":    err,
		})
		if err := sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
	return "", lastErr
}

// ShouldRetry reports whether err looks transient. Quota and safety
// failures are never retried.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuota) || errors.Is(err, ErrSafety) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"connection reset",
		"connection refused",
		"connection closed",
		"broken pipe",
		"tls handshake timeout",
		"unexpected eof",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
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

var _ Client = (*RetryingClient)(nil)
