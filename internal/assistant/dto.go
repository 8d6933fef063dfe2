package assistant

import "encoding/json"

type generateRequest struct {
	CurrentText string `json:"currentText" binding:"required,max=10000"`
	Style       Style  `json:"style" binding:"required,oneof=professional executive creative"`
	Section     string `json:"section" binding:"max=64"`
}

type generateResponse struct {
	Text string `json:"text"`
}

type jobRequest struct {
	ResumeData     json.RawMessage `json:"resumeData" binding:"required"`
	JobDescription string          `json:"jobDescription" binding:"required,max=20000"`
}

type coverLetterResponse struct {
	Letter string `json:"letter"`
}
