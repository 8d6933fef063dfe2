package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

const (
	placeholderDomain = "placeholder.local"
	placeholderName   = "Temporary User"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create registers a user with an empty profile. Calling it again for the same id
// returns the existing user and created=false.
func (s *Service) Create(ctx context.Context, user User) (User, bool, error) {
	if s == nil || s.Repo == nil {
		return User{}, false, errors.New("users service not configured")
	}
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return User{}, false, fmt.Errorf("%w: id and email are required", ErrInvalidInput)
	}

	existing, err := s.Repo.GetByID(ctx, user.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	created, err := s.Repo.Create(ctx, user)
	if err != nil {
		return User{}, false, err
	}
	stored, err := s.Repo.GetByID(ctx, user.ID)
	if err != nil {
		return User{}, false, err
	}
	return stored, created, nil
}

// EnsureOwner creates a placeholder user for ownerID when none exists yet, so
// writes referencing the owner never fail on the foreign key. It reports
// whether this call provisioned the owner.
func (s *Service) EnsureOwner(ctx context.Context, ownerID string) (bool, error) {
	if s == nil || s.Repo == nil {
		return false, errors.New("users service not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return false, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	_, err := s.Repo.GetByID(ctx, ownerID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	created, err := s.Repo.Create(ctx, User{
		ID:    ownerID,
		Email: ownerID + "@" + placeholderDomain,
		Name:  placeholderName,
	})
	if err != nil {
		return false, err
	}
	if created {
		metrics.IncOwnerProvisioned()
		telemetry.Info("user.provisioned", map[string]any{"user_id": ownerID})
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetProfile(ctx, userID)
}

// UpdateProfile replaces the user's profile and returns the stored result.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (Profile, error) {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return Profile{}, err
	}
	if upd.Experiences == nil {
		upd.Experiences = []Experience{}
	}
	if upd.Educations == nil {
		upd.Educations = []Education{}
	}
	if err := s.Repo.UpdateProfile(ctx, userID, upd); err != nil {
		return Profile{}, err
	}
	telemetry.Info("profile.updated", map[string]any{
		"user_id":     userID,
		"experiences": len(upd.Experiences),
		"educations":  len(upd.Educations),
	})
	return s.Repo.GetProfile(ctx, userID)
}

// ImportSnapshot flattens the user and profile into the shape the editor
// copies into a new résumé.
func (s *Service) ImportSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	profile, err := s.Repo.GetProfile(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Name:        user.Name,
		Email:       user.Email,
		Bio:         profile.Bio,
		Phone:       profile.Phone,
		Location:    profile.Location,
		Experiences: nonNil(profile.Experiences),
		Educations:  nonNil(profile.Educations),
	}, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
