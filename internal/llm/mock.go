package llm

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// OriginalTextMarker prefixes the user's text in rewrite prompts; the mock
// client echoes what follows it.
const OriginalTextMarker = "Original text:"

var originalTextRe = regexp.MustCompile(`Original text: "((?s:.*?))"`)

const mockAnalysis = `{
  "score": 72,
  "summary": "Simulated analysis: the resume covers most core requirements.",
  "pros": ["Relevant recent experience", "Clear summary"],
  "cons": ["Few quantified results"],
  "missingKeywords": ["Kubernetes", "CI/CD"],
  "suggestions": ["Quantify achievements in the latest role"]
}`

const mockLetter = `Dear Hiring Manager,

This is a simulated cover letter generated without a configured AI provider. It connects the candidate's experience with the role's requirements.

Sincerely,
The Candidate`

// MockClient answers without calling any provider. It is used when no API
// key is configured.
type MockClient struct {
	// Latency simulates provider round-trip time.
	Latency time.Duration
}

func (m MockClient) Complete(ctx context.Context, req Request) (string, error) {
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if req.JSON {
		return "```json\n" + mockAnalysis + "\n```", nil
	}
	if match := originalTextRe.FindStringSubmatch(req.Prompt); match != nil {
		return fmt.Sprintf("[AI simulated response]: %s (enhanced professional version)", match[1]), nil
	}
	return mockLetter, nil
}

var _ Client = MockClient{}
