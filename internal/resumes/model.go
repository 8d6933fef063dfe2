package resumes

import (
	"encoding/json"
	"time"
)

// Resume is a persisted résumé. StructureData is stored as given.
type Resume struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Title         string          `json:"title"`
	TemplateID    string          `json:"templateId"`
	StructureData json.RawMessage `json:"structureData"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Summary is the dashboard view of a résumé.
type Summary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	TemplateID string    `json:"templateId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UpsertInput carries a save from the editor. An empty ResumeID creates.
type UpsertInput struct {
	UserID     string
	ResumeID   string
	Title      string
	TemplateID string
	Data       json.RawMessage
}

func (r Resume) Summary() Summary {
	return Summary{ID: r.ID, Title: r.Title, TemplateID: r.TemplateID, UpdatedAt: r.UpdatedAt}
}

func cloneData(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	return append(json.RawMessage(nil), data...)
}
