package resumes

import "encoding/json"

type upsertRequest struct {
	UserID     string          `json:"userId" binding:"required,max=128"`
	ResumeID   string          `json:"resumeId" binding:"max=64"`
	Title      string          `json:"title" binding:"max=200"`
	TemplateID string          `json:"templateId" binding:"max=64"`
	Data       json.RawMessage `json:"data" binding:"required"`
}

func (r upsertRequest) toInput() UpsertInput {
	return UpsertInput{
		UserID:     r.UserID,
		ResumeID:   r.ResumeID,
		Title:      r.Title,
		TemplateID: r.TemplateID,
		Data:       r.Data,
	}
}

type deleteResponse struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}
