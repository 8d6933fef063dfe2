package client

import (
	"context"
	"net/http"

	"resume-builder/internal/users"
)

type createUserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CreateUser is idempotent; created reports whether the server made a new row.
func (c *Client) CreateUser(ctx context.Context, id, email, name string) (users.User, bool, error) {
	var out users.User
	status, err := c.do(ctx, http.MethodPost, "/users", createUserRequest{ID: id, Email: email, Name: name}, &out)
	return out, status == http.StatusCreated, err
}

func (c *Client) GetUser(ctx context.Context, id string) (users.Detail, error) {
	var out users.Detail
	_, err := c.do(ctx, http.MethodGet, "/users/"+escape(id), nil, &out)
	return out, err
}

// ProfileInput mirrors the body of PUT /users/:id/profile.
type ProfileInput struct {
	Name        *string            `json:"name,omitempty"`
	Bio         string             `json:"bio"`
	Phone       string             `json:"phone"`
	Location    string             `json:"location"`
	Experiences []users.Experience `json:"experiences"`
	Educations  []users.Education  `json:"educations"`
}

func (c *Client) UpdateProfile(ctx context.Context, id string, in ProfileInput) (users.Profile, error) {
	var out users.Profile
	_, err := c.do(ctx, http.MethodPut, "/users/"+escape(id)+"/profile", in, &out)
	return out, err
}

// ImportProfile returns the flat profile snapshot used to seed a résumé.
func (c *Client) ImportProfile(ctx context.Context, id string) (users.Snapshot, error) {
	var out users.Snapshot
	_, err := c.do(ctx, http.MethodGet, "/users/"+escape(id)+"/profile/import", nil, &out)
	return out, err
}
