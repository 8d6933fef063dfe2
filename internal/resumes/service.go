package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

const (
	DefaultTitle           = "My Resume"
	DefaultDuplicateSuffix = " (Copy)"
	DefaultTemplateID      = "modern"
)

// OwnerProvisioner creates the owner record on demand.
type OwnerProvisioner interface {
	EnsureOwner(ctx context.Context, ownerID string) (bool, error)
}

// Service contains business logic for résumés.
type Service struct {
	Repo   Repo
	Owners OwnerProvisioner

	DefaultTitle    string
	DuplicateSuffix string
	// MaxDataBytes caps the stored structure; zero disables the check.
	MaxDataBytes int64

	NewID func() string
}

// NewService constructs a Service with default title and suffix.
func NewService(repo Repo, owners OwnerProvisioner) *Service {
	return &Service{
		Repo:            repo,
		Owners:          owners,
		DefaultTitle:    DefaultTitle,
		DuplicateSuffix: DefaultDuplicateSuffix,
		NewID:           uuid.NewString,
	}
}

// Upsert creates a résumé when in.ResumeID is empty, otherwise updates the
// owner's existing one. An update for an unknown id returns ErrNotFound and
// creates nothing. The owner is provisioned first when missing.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (Resume, bool, error) {
	start := time.Now()
	resume, created, err := s.upsert(ctx, in)
	metrics.ObserveUpsert(time.Since(start))

	outcome := metrics.UpsertUpdated
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = metrics.UpsertNotFound
	case errors.Is(err, ErrInvalidInput):
		outcome = metrics.UpsertInvalid
	case err != nil:
		outcome = metrics.UpsertFailed
	case created:
		outcome = metrics.UpsertCreated
	}
	metrics.IncUpsert(outcome)

	fields := map[string]any{
		"user_id":     in.UserID,
		"resume_id":   resume.ID,
		"outcome":     outcome,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if in.ResumeID != "" {
		fields["resume_id"] = in.ResumeID
	}
	if err != nil && outcome == metrics.UpsertFailed {
		fields["error"] = err
		telemetry.Error("resume.upsert", fields)
	} else {
		telemetry.Info("resume.upsert", fields)
	}
	return resume, created, err
}

func (s *Service) upsert(ctx context.Context, in UpsertInput) (Resume, bool, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.ResumeID = strings.TrimSpace(in.ResumeID)
	in.Title = strings.TrimSpace(in.Title)
	in.TemplateID = strings.TrimSpace(in.TemplateID)

	if in.UserID == "" {
		return Resume{}, false, &FieldError{Field: "userId", Issue: "required"}
	}
	if err := s.validateData(in.Data); err != nil {
		return Resume{}, false, err
	}
	if in.Title == "" {
		in.Title = s.defaultTitle()
	}

	if s.Owners != nil {
		if _, err := s.Owners.EnsureOwner(ctx, in.UserID); err != nil {
			return Resume{}, false, fmt.Errorf("provision owner: %w", err)
		}
	}

	if in.ResumeID != "" {
		if !validID(in.ResumeID) {
			return Resume{}, false, ErrNotFound
		}
		resume, err := s.Repo.Update(ctx, in.UserID, in.ResumeID, in.Title, in.TemplateID, in.Data)
		if err != nil {
			return Resume{}, false, err
		}
		return resume, false, nil
	}

	templateID := in.TemplateID
	if templateID == "" {
		templateID = DefaultTemplateID
	}
	resume, err := s.Repo.Create(ctx, Resume{
		ID:            s.newID(),
		UserID:        in.UserID,
		Title:         in.Title,
		TemplateID:    templateID,
		StructureData: in.Data,
	})
	if err != nil {
		return Resume{}, false, err
	}
	return resume, true, nil
}

func (s *Service) validateData(data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &FieldError{Field: "data", Issue: "required"}
	}
	if !json.Valid(trimmed) {
		return &FieldError{Field: "data", Issue: "invalid"}
	}
	if s.MaxDataBytes > 0 && int64(len(trimmed)) > s.MaxDataBytes {
		return &FieldError{Field: "data", Issue: "too long"}
	}
	return nil
}

// Get returns a résumé by id.
func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	if !validID(id) {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// ListByOwner returns the owner's résumés, most recently updated first.
func (s *Service) ListByOwner(ctx context.Context, userID string) ([]Summary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &FieldError{Field: "userId", Issue: "required"}
	}
	return s.Repo.ListByOwner(ctx, userID)
}

// Delete removes a résumé. Deleting an unknown id succeeds; the result
// reports whether a record was actually removed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	metrics.IncDelete()
	if !validID(id) {
		return false, nil
	}
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	telemetry.Info("resume.delete", map[string]any{"resume_id": id, "deleted": deleted})
	return deleted, nil
}

// Duplicate copies a résumé under a new id with the title suffix appended.
func (s *Service) Duplicate(ctx context.Context, id string) (Resume, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return Resume{}, err
	}
	copied, err := s.Repo.Create(ctx, Resume{
		ID:            s.newID(),
		UserID:        source.UserID,
		Title:         source.Title + s.duplicateSuffix(),
		TemplateID:    source.TemplateID,
		StructureData: cloneData(source.StructureData),
	})
	if err != nil {
		return Resume{}, err
	}
	metrics.IncDuplicate()
	telemetry.Info("resume.duplicate", map[string]any{"source_id": source.ID, "resume_id": copied.ID})
	return copied, nil
}

func (s *Service) defaultTitle() string {
	if s.DefaultTitle != "" {
		return s.DefaultTitle
	}
	return DefaultTitle
}

func (s *Service) duplicateSuffix() string {
	if s.DuplicateSuffix != "" {
		return s.DuplicateSuffix
	}
	return DefaultDuplicateSuffix
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}
