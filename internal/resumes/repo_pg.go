package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, template_id, structure_data, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var r Resume
	var data []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.TemplateID, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	r.StructureData = json.RawMessage(data)
	return r, nil
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (id, user_id, title, template_id, structure_data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		resume.TemplateID,
		string(resume.StructureData),
	))
}

func (r *PGRepo) Update(ctx context.Context, userID, id, title, templateID string, data json.RawMessage) (Resume, error) {
	const query = `
UPDATE resumes SET
  title = $2,
  template_id = COALESCE(NULLIF($3, ''), template_id),
  structure_data = $4,
  updated_at = now()
WHERE id = $1 AND user_id = $5
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query, id, title, templateID, string(data), userID))
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return scanResume(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) ListByOwner(ctx context.Context, userID string) ([]Summary, error) {
	const query = `
SELECT id, title, template_id, updated_at
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Title, &s.TemplateID, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
