package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient swaps the underlying http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(in.System); s != "" {
		messages = append(messages, chatMessage{Role: "system", Content: s})
	}
	messages = append(messages, chatMessage{Role: "user", Content: in.Prompt})

	reqBody := chatRequest{Model: c.model, Messages: messages}
	// gpt-5 models reject any temperature other than the default.
	if in.Temperature != nil && !isGPT5(c.model) {
		reqBody.Temperature = in.Temperature
	}
	if in.JSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &llm.ProviderError{Provider: "openai", Kind: llm.ErrTransient, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.ProviderError{Provider: "openai", Kind: llm.ErrTransient, Err: err}
	}

	var parsed chatResponse
	_ = json.Unmarshal(body, &parsed)
	if err := classifyStatus(resp.StatusCode, parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	choice := parsed.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", &llm.ProviderError{Provider: "openai", Kind: llm.ErrSafety}
	}

	logUsage(c.model, parsed.Usage)

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", llm.ErrEmpty
	}
	return content, nil
}

func classifyStatus(status int, parsed chatResponse) error {
	if status >= 200 && status < 300 && parsed.Error == nil {
		return nil
	}
	var detail error
	if parsed.Error != nil {
		detail = fmt.Errorf("%s (%s)", parsed.Error.Message, parsed.Error.Type)
	} else {
		detail = fmt.Errorf("status %d", status)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return &llm.ProviderError{Provider: "openai", Kind: llm.ErrQuota, Err: detail}
	case status >= 500:
		return &llm.ProviderError{Provider: "openai", Kind: llm.ErrTransient, Err: detail}
	default:
		return fmt.Errorf("openai error: %w", detail)
	}
}

func logUsage(model string, usage *chatUsage) {
	fields := map[string]any{"provider": "openai", "model": model}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
