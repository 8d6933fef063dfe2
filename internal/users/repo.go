package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid user input")
	ErrEmailTaken   = errors.New("email already registered")
)

type Repo interface {
	// Create inserts the user with an empty profile. It reports false without
	// error when a user with the same id already exists.
	Create(ctx context.Context, user User) (bool, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
	// UpdateProfile applies upd atomically: scalars first, then both
	// collections are deleted and recreated in the given order.
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error
	Count(ctx context.Context) (int, error)
}
