package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements llm.Client on top of the Gemini API.
type Generator struct {
	models    contentGenerator
	modelName string
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenerator(client.Models, model), nil
}

func newGenerator(models contentGenerator, model string) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Generator{models: models, modelName: model}
}

// Complete sends the prompt to Gemini and returns the concatenated text parts.
func (g *Generator) Complete(ctx context.Context, req llm.Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if s := strings.TrimSpace(req.System); s != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: s}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil {
		return "", llm.ErrEmpty
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", &llm.ProviderError{Provider: "gemini", Kind: llm.ErrSafety, Err: fmt.Errorf("prompt blocked: %s", fb.BlockReason)}
	}

	var builder strings.Builder
	blocked := false
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason == genai.FinishReasonSafety {
			blocked = true
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		if blocked {
			return "", &llm.ProviderError{Provider: "gemini", Kind: llm.ErrSafety}
		}
		return "", llm.ErrEmpty
	}
	if meta := resp.UsageMetadata; meta != nil {
		telemetry.Info("llm.response", map[string]any{
			"provider":          "gemini",
			"model":             g.modelName,
			"prompt_tokens":     meta.PromptTokenCount,
			"completion_tokens": meta.CandidatesTokenCount,
			"total_tokens":      meta.TotalTokenCount,
		})
	}
	return output, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("generate content: %w", err)
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return &llm.ProviderError{Provider: "gemini", Kind: llm.ErrQuota, Err: err}
	case apiErr.Code >= 500:
		return &llm.ProviderError{Provider: "gemini", Kind: llm.ErrTransient, Err: err}
	default:
		return fmt.Errorf("generate content: %w", err)
	}
}

var _ llm.Client = (*Generator)(nil)
