package editor

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Document is the résumé held in memory by an editor session.
type Document struct {
	// ID stays empty until the server assigns one.
	ID      string
	OwnerID string
	Title   string
	Content json.RawMessage
}

func (d Document) clone() Document {
	if d.Content != nil {
		d.Content = append(json.RawMessage(nil), d.Content...)
	}
	return d
}

// SaveRequest is one upsert sent to the server.
type SaveRequest struct {
	UserID   string
	ResumeID string
	Title    string
	Data     json.RawMessage
}

// SaveResult is the canonical record identity returned by the server.
type SaveResult struct {
	ID        string
	UpdatedAt time.Time
}

// Saver persists snapshots. Implementations report a remotely deleted
// résumé with an error matching ErrResumeDeleted.
type Saver interface {
	SaveResume(ctx context.Context, req SaveRequest) (SaveResult, error)
}

var (
	// ErrResumeDeleted means the résumé was removed on the server; the
	// session stops saving and never recreates it.
	ErrResumeDeleted = errors.New("resume was deleted")
	ErrClosed        = errors.New("editor session closed")
)
