package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	users    map[string]User
	profiles map[string]Profile
	now      func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:    make(map[string]User),
		profiles: make(map[string]Profile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return false, nil
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return false, ErrEmailTaken
		}
	}
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.profiles[user.ID] = Profile{UserID: user.ID, UpdatedAt: now}
	return true, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.users[userID]; !ok {
		return Profile{}, ErrNotFound
	}
	p := r.profiles[userID]
	p.UserID = userID
	p.Experiences = append([]Experience{}, p.Experiences...)
	p.Educations = append([]Education{}, p.Educations...)
	return p, nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	now := r.now()
	if upd.Name != nil {
		user.Name = *upd.Name
		user.UpdatedAt = now
		r.users[userID] = user
	}
	r.profiles[userID] = Profile{
		UserID:      userID,
		Bio:         upd.Bio,
		Phone:       upd.Phone,
		Location:    upd.Location,
		Experiences: append([]Experience{}, upd.Experiences...),
		Educations:  append([]Education{}, upd.Educations...),
		UpdatedAt:   now,
	}
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
