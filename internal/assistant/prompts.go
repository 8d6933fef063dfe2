package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Style is the tone requested for a rewrite.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleExecutive    Style = "executive"
	StyleCreative     Style = "creative"
)

const (
	SectionSummary    = "summary"
	SectionExperience = "experience"
)

func styleDescription(s Style) string {
	switch s {
	case StyleProfessional:
		return "formal, clear and focused on technical skills"
	case StyleExecutive:
		return "strategic and focused on results, leadership and business impact (C-level tone)"
	case StyleCreative:
		return "innovative and engaging, showing personality (ideal for design or marketing)"
	default:
		return "professional"
	}
}

func rewritePrompt(text string, style Style, section string) string {
	switch section {
	case SectionSummary:
		return fmt.Sprintf(`Act as a resume and recruiting expert. Rewrite the following Professional Summary to make it more %s.
Original text: "%s"

Rules:
- Keep it truthful, only improve the writing.
- Be direct and impactful.
- Use strong keywords.
- Return ONLY the rewritten text, without explanations or quotes.`, styleDescription(style), text)
	case SectionExperience:
		return fmt.Sprintf(`Act as a senior recruiter. Improve the following work experience description to make it more impactful (%s style).
Original text: "%s"

Rules:
- Apply the STAR method (Situation, Task, Action, Result) implicitly.
- Start sentences with strong action verbs.
- Quantify results whenever possible (use placeholders such as [X%%] if needed).
- Remove passive cliches.
- Keep roughly the same length.
- Return ONLY the rewritten text.`, style, text)
	default:
		return fmt.Sprintf(`Improve the following resume text using a %s tone.
Original text: "%s"
Return only the improved text.`, style, text)
	}
}

func analysisPrompt(resumeData json.RawMessage, jobDescription string) string {
	return fmt.Sprintf(`Analyze the resume below against the provided job description.
Return ONLY a valid JSON object with this structure:
{
  "score": (number from 0 to 100),
  "summary": "concise summary of the fit",
  "pros": ["strength 1", "strength 2"],
  "cons": ["gap or improvement 1"],
  "missingKeywords": ["keyword1", "keyword2"],
  "suggestions": ["adjustment 1"]
}

RESUME:
%s

JOB DESCRIPTION:
%s`, compactJSON(resumeData), strings.TrimSpace(jobDescription))
}

func coverLetterPrompt(resumeData json.RawMessage, jobDescription string) string {
	return fmt.Sprintf(`Act as an expert in professional writing and recruiting.
Write a highly persuasive, personalised cover letter.

CANDIDATE DATA:
%s

TARGET ROLE:
%s

GUIDELINES:
- Professional but enthusiastic tone.
- Connect the candidate's most relevant experience with the role's requirements.
- Highlight quantifiable results mentioned in the resume.
- Keep it to 3 or 4 paragraphs (about 300-400 words).
- Include a formal greeting and closing.
- Return ONLY the letter text, without extra comments or quotes.`, compactJSON(resumeData), strings.TrimSpace(jobDescription))
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
