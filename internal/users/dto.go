package users

import (
	"time"

	"resume-builder/internal/resumes"
)

type createUserRequest struct {
	ID    string `json:"id" binding:"required,max=128"`
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"max=200"`
}

type updateProfileRequest struct {
	Name        *string      `json:"name" binding:"omitempty,max=200"`
	Bio         string       `json:"bio" binding:"max=5000"`
	Phone       string       `json:"phone" binding:"max=64"`
	Location    string       `json:"location" binding:"max=200"`
	Experiences []Experience `json:"experiences" binding:"max=50,dive"`
	Educations  []Education  `json:"educations" binding:"max=50,dive"`
}

func (r updateProfileRequest) toUpdate() ProfileUpdate {
	return ProfileUpdate{
		Name:        r.Name,
		Bio:         r.Bio,
		Phone:       r.Phone,
		Location:    r.Location,
		Experiences: r.Experiences,
		Educations:  r.Educations,
	}
}

// Detail is the user view returned by GET /users/:id.
type Detail struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Profile   Profile           `json:"profile"`
	Resumes   []resumes.Summary `json:"resumes"`
}
