package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers behind a single text completion call.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one prompt sent to a provider.
type Request struct {
	// System is an optional instruction sent ahead of the prompt.
	System string
	Prompt string
	// JSON asks the provider for a JSON object response when it supports it.
	JSON        bool
	Temperature *float32
}

var (
	// ErrQuota marks provider rate-limit or quota exhaustion.
	ErrQuota = errors.New("llm quota exhausted")
	// ErrSafety marks responses blocked by the provider's content filter.
	ErrSafety = errors.New("llm response blocked by safety filter")
	// ErrTransient marks failures worth retrying (5xx, timeouts).
	ErrTransient = errors.New("llm transient failure")
	// ErrEmpty is returned when the provider produced no text.
	ErrEmpty = errors.New("llm returned empty response")
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Provider + ": " + e.Kind.Error()
	}
	return e.Provider + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 { return &v }
