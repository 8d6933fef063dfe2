package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) (bool, error) {
	// The profile row is inserted in the same statement so a user never exists without one.
	const query = `
WITH inserted AS (
  INSERT INTO users (id, email, name, created_at, updated_at)
  VALUES ($1, $2, $3, now(), now())
  ON CONFLICT (id) DO NOTHING
  RETURNING id
)
INSERT INTO profiles (user_id, updated_at)
SELECT id, now() FROM inserted`
	res, err := r.DB.ExecContext(ctx, query, user.ID, user.Email, nullableString(user.Name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return false, ErrEmailTaken
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, name, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Name = name.String
	return user, nil
}

func (r *PGRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	const profileQuery = `
SELECT u.id, COALESCE(p.bio, ''), COALESCE(p.phone, ''), COALESCE(p.location, ''), COALESCE(p.updated_at, u.updated_at)
FROM users u
LEFT JOIN profiles p ON p.user_id = u.id
WHERE u.id = $1`
	var p Profile
	err := r.DB.QueryRowContext(ctx, profileQuery, userID).Scan(&p.UserID, &p.Bio, &p.Phone, &p.Location, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}

	if p.Experiences, err = r.experiences(ctx, userID); err != nil {
		return Profile{}, err
	}
	if p.Educations, err = r.educations(ctx, userID); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *PGRepo) experiences(ctx context.Context, userID string) ([]Experience, error) {
	const query = `
SELECT title, company, location, start_date, end_date, current, description
FROM experiences
WHERE user_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Experience{}
	for rows.Next() {
		var e Experience
		if err := rows.Scan(&e.Title, &e.Company, &e.Location, &e.StartDate, &e.EndDate, &e.Current, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) educations(ctx context.Context, userID string) ([]Education, error) {
	const query = `
SELECT school, degree, field, start_date, end_date, description
FROM educations
WHERE user_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Education{}
	for rows.Next() {
		var e Education
		if err := rows.Scan(&e.School, &e.Degree, &e.Field, &e.StartDate, &e.EndDate, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if upd.Name != nil {
		res, err := tx.ExecContext(ctx, `UPDATE users SET name = $2, updated_at = now() WHERE id = $1`, userID, nullableString(*upd.Name))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
	}

	const upsertProfile = `
INSERT INTO profiles (user_id, bio, phone, location, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (user_id) DO UPDATE SET
  bio = EXCLUDED.bio,
  phone = EXCLUDED.phone,
  location = EXCLUDED.location,
  updated_at = now()`
	if _, err := tx.ExecContext(ctx, upsertProfile, userID, upd.Bio, upd.Phone, upd.Location); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM experiences WHERE user_id = $1`, userID); err != nil {
		return err
	}
	const insertExperience = `
INSERT INTO experiences (user_id, position, title, company, location, start_date, end_date, current, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, e := range upd.Experiences {
		if _, err := tx.ExecContext(ctx, insertExperience, userID, i, e.Title, e.Company, e.Location, e.StartDate, e.EndDate, e.Current, e.Description); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM educations WHERE user_id = $1`, userID); err != nil {
		return err
	}
	const insertEducation = `
INSERT INTO educations (user_id, position, school, degree, field, start_date, end_date, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, e := range upd.Educations {
		if _, err := tx.ExecContext(ctx, insertEducation, userID, i, e.School, e.Degree, e.Field, e.StartDate, e.EndDate, e.Description); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
