package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func newTestClient(t *testing.T, model string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient("sk-test", model, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestCompleteSendsMessagesAndReturnsContent(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  polished  "},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	})

	out, err := c.Complete(context.Background(), llm.Request{
		System:      "be brief",
		Prompt:      "rewrite this",
		JSON:        true,
		Temperature: llm.Float32(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, "polished", out)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "rewrite this", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.NotNil(t, got.Temperature)
}

func TestCompleteOmitsTemperatureForGPT5(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x", Temperature: llm.Float32(0.7)})
	require.NoError(t, err)
	_, hasTemp := raw["temperature"]
	assert.False(t, hasTemp)
	_, hasFormat := raw["response_format"]
	assert.False(t, hasFormat)
}

func TestCompleteClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "quota", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, want: llm.ErrQuota},
		{name: "server", status: http.StatusBadGateway, body: `bad gateway`, want: llm.ErrTransient},
		{name: "filtered", status: http.StatusOK, body: `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`, want: llm.ErrSafety},
		{name: "empty", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, want: llm.ErrEmpty},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, "gpt-4o", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(" ", "gpt-4o")
	require.Error(t, err)

	c, err := NewClient("sk", "")
	require.NoError(t, err)
	assert.Equal(t, defaultModel, c.model)
}
