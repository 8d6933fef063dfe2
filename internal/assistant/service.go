package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

var (
	// ErrUnavailable is returned when the provider refused for quota or
	// safety reasons; callers should ask the user to try again.
	ErrUnavailable = errors.New("ai assistant temporarily unavailable")
	// ErrInvalidResponse means the provider output could not be parsed.
	ErrInvalidResponse = errors.New("ai response could not be parsed")
	ErrInvalidInput    = errors.New("invalid input")
)

const defaultCallTimeout = 45 * time.Second

// Analysis scores a résumé against a job description.
type Analysis struct {
	Score           int      `json:"score"`
	Summary         string   `json:"summary"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
}

// Service builds prompts and interprets model output.
type Service struct {
	Client  llm.Client
	Timeout time.Duration
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{Client: client, Timeout: defaultCallTimeout}
}

// Generate rewrites text for the given section in the requested style.
func (s *Service) Generate(ctx context.Context, text string, style Style, section string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if style == "" {
		style = StyleProfessional
	}
	out, err := s.complete(ctx, "generate", llm.Request{
		Prompt:      rewritePrompt(text, style, strings.ToLower(strings.TrimSpace(section))),
		Temperature: llm.Float32(0.7),
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\"\n "), nil
}

// AnalyzeJob asks the model for a structured fit analysis.
func (s *Service) AnalyzeJob(ctx context.Context, resumeData json.RawMessage, jobDescription string) (Analysis, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Analysis{}, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	out, err := s.complete(ctx, "analyze", llm.Request{
		Prompt:      analysisPrompt(resumeData, jobDescription),
		JSON:        true,
		Temperature: llm.Float32(0),
	})
	if err != nil {
		return Analysis{}, err
	}
	analysis, err := ParseAnalysis(out)
	if err != nil {
		telemetry.Warn("ai.analysis.parse_failed", map[string]any{"error": err, "output_len": len(out)})
		return Analysis{}, err
	}
	return analysis, nil
}

// CoverLetter drafts a cover letter for the résumé and role.
func (s *Service) CoverLetter(ctx context.Context, resumeData json.RawMessage, jobDescription string) (string, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return "", fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	return s.complete(ctx, "cover_letter", llm.Request{
		Prompt:      coverLetterPrompt(resumeData, jobDescription),
		Temperature: llm.Float32(0.7),
	})
}

func (s *Service) complete(ctx context.Context, kind string, req llm.Request) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := s.Client.Complete(ctx, req)
	metrics.ObserveAI(time.Since(start))
	if err != nil {
		metrics.IncAICall(kind + "_failed")
		telemetry.Error("ai.call_failed", map[string]any{"kind": kind, "error": err})
		if errors.Is(err, llm.ErrQuota) || errors.Is(err, llm.ErrSafety) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	metrics.IncAICall(kind)
	return out, nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseAnalysis extracts the first-to-last brace span from model output
// (which may be fenced or prefixed with prose) and normalises it.
func ParseAnalysis(out string) (Analysis, error) {
	raw := jsonObjectRe.FindString(out)
	if raw == "" {
		raw = out
	}
	var parsed struct {
		Score           float64  `json:"score"`
		Summary         string   `json:"summary"`
		Pros            []string `json:"pros"`
		Cons            []string `json:"cons"`
		MissingKeywords []string `json:"missingKeywords"`
		Suggestions     []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return Analysis{
		Score:           clampScore(parsed.Score),
		Summary:         strings.TrimSpace(parsed.Summary),
		Pros:            nonNil(parsed.Pros),
		Cons:            nonNil(parsed.Cons),
		MissingKeywords: nonNil(parsed.MissingKeywords),
		Suggestions:     nonNil(parsed.Suggestions),
	}, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
