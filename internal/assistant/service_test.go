package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/llm"
)

type stubClient struct {
	out  string
	err  error
	last llm.Request
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.out, s.err
}

func TestGenerateUsesSectionPrompts(t *testing.T) {
	stub := &stubClient{out: "\"Better text\"\n"}
	svc := NewService(stub)

	out, err := svc.Generate(context.Background(), "did stuff", StyleExecutive, "Summary")
	require.NoError(t, err)
	assert.Equal(t, "Better text", out)
	assert.Contains(t, stub.last.Prompt, "Professional Summary")
	assert.Contains(t, stub.last.Prompt, `Original text: "did stuff"`)
	assert.Contains(t, stub.last.Prompt, "C-level")

	_, err = svc.Generate(context.Background(), "led team", StyleCreative, SectionExperience)
	require.NoError(t, err)
	assert.Contains(t, stub.last.Prompt, "STAR")
	assert.Contains(t, stub.last.Prompt, "[X%]")

	_, err = svc.Generate(context.Background(), "hello", StyleProfessional, "skills")
	require.NoError(t, err)
	assert.Contains(t, stub.last.Prompt, "professional tone")
}

func TestGenerateWithMockProviderEchoesText(t *testing.T) {
	svc := NewService(llm.MockClient{})
	out, err := svc.Generate(context.Background(), "Built APIs", StyleProfessional, SectionSummary)
	require.NoError(t, err)
	assert.Contains(t, out, "Built APIs")
	assert.Contains(t, out, "enhanced")
}

func TestGenerateRejectsBlankText(t *testing.T) {
	_, err := NewService(&stubClient{}).Generate(context.Background(), "  ", StyleProfessional, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeJobParsesFencedJSON(t *testing.T) {
	svc := NewService(llm.MockClient{})
	analysis, err := svc.AnalyzeJob(context.Background(), json.RawMessage(`{"name":"Ana"}`), "Go engineer")
	require.NoError(t, err)
	assert.Equal(t, 72, analysis.Score)
	assert.NotEmpty(t, analysis.MissingKeywords)
}

func TestAnalyzeJobIncludesResumeAndJob(t *testing.T) {
	stub := &stubClient{out: `{"score": 10}`}
	_, err := NewService(stub).AnalyzeJob(context.Background(), json.RawMessage(`{ "name" : "Ana" }`), "Go engineer")
	require.NoError(t, err)
	assert.True(t, stub.last.JSON)
	assert.Contains(t, stub.last.Prompt, `{"name":"Ana"}`)
	assert.Contains(t, stub.last.Prompt, "Go engineer")
}

func TestParseAnalysis(t *testing.T) {
	a, err := ParseAnalysis("Here you go:\n```json\n{\"score\": 140.2, \"summary\": \" ok \"}\n```")
	require.NoError(t, err)
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, "ok", a.Summary)
	assert.NotNil(t, a.Pros)
	assert.NotNil(t, a.Suggestions)

	a, err = ParseAnalysis(`{"score": -3}`)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Score)

	_, err = ParseAnalysis("no json here")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestProviderRefusalsBecomeUnavailable(t *testing.T) {
	for _, kind := range []error{llm.ErrQuota, llm.ErrSafety} {
		stub := &stubClient{err: &llm.ProviderError{Provider: "test", Kind: kind}}
		_, err := NewService(stub).CoverLetter(context.Background(), json.RawMessage(`{}`), "role")
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	stub := &stubClient{err: errors.New("boom")}
	_, err := NewService(stub).CoverLetter(context.Background(), json.RawMessage(`{}`), "role")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}
