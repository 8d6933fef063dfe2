package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"resume-builder/internal/editor"
	"resume-builder/internal/resumes"
)

// UpsertRequest mirrors the body of POST /resumes.
type UpsertRequest struct {
	UserID     string          `json:"userId"`
	ResumeID   string          `json:"resumeId,omitempty"`
	Title      string          `json:"title,omitempty"`
	TemplateID string          `json:"templateId,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DeleteResult is the body of DELETE /resumes/:id.
type DeleteResult struct {
	Message string `json:"message"`
	Deleted bool   `json:"deleted"`
}

func (c *Client) UpsertResume(ctx context.Context, req UpsertRequest) (resumes.Resume, error) {
	var out resumes.Resume
	_, err := c.do(ctx, http.MethodPost, "/resumes", req, &out)
	return out, err
}

func (c *Client) GetResume(ctx context.Context, id string) (resumes.Resume, error) {
	var out resumes.Resume
	_, err := c.do(ctx, http.MethodGet, "/resumes/"+escape(id), nil, &out)
	return out, err
}

// ListResumes returns the owner's résumés, most recently updated first.
func (c *Client) ListResumes(ctx context.Context, userID string) ([]resumes.Summary, error) {
	var out []resumes.Summary
	_, err := c.do(ctx, http.MethodGet, "/users/"+escape(userID)+"/resumes", nil, &out)
	return out, err
}

// DeleteResume succeeds for records that are already gone.
func (c *Client) DeleteResume(ctx context.Context, id string) (DeleteResult, error) {
	var out DeleteResult
	_, err := c.do(ctx, http.MethodDelete, "/resumes/"+escape(id), nil, &out)
	return out, err
}

func (c *Client) DuplicateResume(ctx context.Context, id string) (resumes.Resume, error) {
	var out resumes.Resume
	_, err := c.do(ctx, http.MethodPost, "/resumes/"+escape(id)+"/duplicate", nil, &out)
	return out, err
}

// SaveResume implements editor.Saver on top of UpsertResume.
func (c *Client) SaveResume(ctx context.Context, req editor.SaveRequest) (editor.SaveResult, error) {
	saved, err := c.UpsertResume(ctx, UpsertRequest{
		UserID:   req.UserID,
		ResumeID: req.ResumeID,
		Title:    req.Title,
		Data:     req.Data,
	})
	if err != nil {
		if req.ResumeID != "" && errors.Is(err, ErrNotFound) {
			return editor.SaveResult{}, fmt.Errorf("%w: %w", editor.ErrResumeDeleted, err)
		}
		return editor.SaveResult{}, err
	}
	return editor.SaveResult{ID: saved.ID, UpdatedAt: saved.UpdatedAt}, nil
}

var _ editor.Saver = (*Client)(nil)
