package client

import (
	"context"
	"encoding/json"
	"net/http"

	"resume-builder/internal/assistant"
)

type generateRequest struct {
	CurrentText string `json:"currentText"`
	Style       string `json:"style"`
	Section     string `json:"section,omitempty"`
}

type jobRequest struct {
	ResumeData     json.RawMessage `json:"resumeData"`
	JobDescription string          `json:"jobDescription"`
}

// Rewrite asks the assistant to rewrite text in style for section.
func (c *Client) Rewrite(ctx context.Context, text, style, section string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	_, err := c.do(ctx, http.MethodPost, "/ai/generate", generateRequest{CurrentText: text, Style: style, Section: section}, &out)
	return out.Text, err
}

func (c *Client) AnalyzeJob(ctx context.Context, resumeData json.RawMessage, jobDescription string) (assistant.Analysis, error) {
	var out assistant.Analysis
	_, err := c.do(ctx, http.MethodPost, "/ai/analyze-job", jobRequest{ResumeData: resumeData, JobDescription: jobDescription}, &out)
	return out, err
}

func (c *Client) CoverLetter(ctx context.Context, resumeData json.RawMessage, jobDescription string) (string, error) {
	var out struct {
		Letter string `json:"letter"`
	}
	_, err := c.do(ctx, http.MethodPost, "/ai/cover-letter", jobRequest{ResumeData: resumeData, JobDescription: jobDescription}, &out)
	return out.Letter, err
}

// Health returns the decoded /health body.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}
