package resumes

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	resumes map[string]Resume
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		resumes: make(map[string]Resume),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	resume.CreatedAt = now
	resume.UpdatedAt = now
	resume.StructureData = cloneData(resume.StructureData)
	r.resumes[resume.ID] = resume
	return copyResume(resume), nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID, id, title, templateID string, data json.RawMessage) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.resumes[id]
	if !ok || existing.UserID != userID {
		return Resume{}, ErrNotFound
	}
	existing.Title = title
	if templateID != "" {
		existing.TemplateID = templateID
	}
	existing.StructureData = cloneData(data)
	existing.UpdatedAt = r.now()
	r.resumes[id] = existing
	return copyResume(existing), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.resumes[id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return copyResume(resume), nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, userID string) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Summary{}
	for _, resume := range r.resumes {
		if resume.UserID == userID {
			out = append(out, resume.Summary())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resumes[id]; !ok {
		return false, nil
	}
	delete(r.resumes, id)
	return true, nil
}

// Count returns the number of stored résumés.
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resumes)
}

func copyResume(r Resume) Resume {
	r.StructureData = cloneData(r.StructureData)
	return r
}
