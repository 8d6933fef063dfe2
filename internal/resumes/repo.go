package resumes

import (
	"context"
	"encoding/json"
)

type Repo interface {
	Create(ctx context.Context, resume Resume) (Resume, error)
	// Update overwrites title and data of the owner's résumé and refreshes
	// UpdatedAt. An empty templateID keeps the stored one. A missing row, or
	// one owned by someone else, yields ErrNotFound; Update never inserts.
	Update(ctx context.Context, userID, id, title, templateID string, data json.RawMessage) (Resume, error)
	GetByID(ctx context.Context, id string) (Resume, error)
	// ListByOwner returns summaries ordered by UpdatedAt, newest first.
	ListByOwner(ctx context.Context, userID string) ([]Summary, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
