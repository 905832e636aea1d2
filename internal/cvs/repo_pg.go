package cvs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres. The list sections live in JSONB
// columns; entries have no rows of their own.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new CV.
func (r *PGRepo) Create(ctx context.Context, cv CV) error {
	if strings.TrimSpace(cv.UserID) == "" {
		return ErrInvalidInput
	}
	const query = `
INSERT INTO cvs (id, user_id, title, personal_info, education, experience, skills, projects, progress, last_updated, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	cols, err := marshalSections(cv)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		cv.ID,
		cv.UserID,
		cv.Title,
		cols.personalInfo,
		cols.education,
		cols.experience,
		cols.skills,
		cols.projects,
		cv.Progress,
		cv.LastUpdated,
		cv.CreatedAt,
	)
	return err
}

const selectColumns = `id, user_id, title, personal_info, education, experience, skills, projects, progress, last_updated, created_at`

// GetByID fetches a CV by id, scoped to its owner. A CV owned by another
// user is reported as ErrNotFound.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (CV, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM cvs
WHERE user_id = $1 AND id = $2
LIMIT 1`, selectColumns)
	cv, err := scanCV(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CV{}, ErrNotFound
		}
		return CV{}, err
	}
	return cv, nil
}

// ListByUser lists the user's CVs, most recently updated first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]CV, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM cvs
WHERE user_id = $1
ORDER BY last_updated DESC`, selectColumns)

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CV{}
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// Update rewrites the document for id+owner. No version check: last writer
// wins at the storage layer.
func (r *PGRepo) Update(ctx context.Context, cv CV) error {
	const query = `
UPDATE cvs
SET title = $3,
    personal_info = $4,
    education = $5,
    experience = $6,
    skills = $7,
    projects = $8,
    progress = $9,
    last_updated = $10
WHERE user_id = $1 AND id = $2`

	cols, err := marshalSections(cv)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		cv.UserID,
		cv.ID,
		cv.Title,
		cols.personalInfo,
		cols.education,
		cols.experience,
		cols.skills,
		cols.projects,
		cv.Progress,
		cv.LastUpdated,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete hard-deletes the CV matching id+owner.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM cvs WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type sectionColumns struct {
	personalInfo []byte
	education    []byte
	experience   []byte
	skills       []byte
	projects     []byte
}

func marshalSections(cv CV) (sectionColumns, error) {
	cv.emptySections()
	var cols sectionColumns
	var err error
	if cols.personalInfo, err = json.Marshal(cv.PersonalInfo); err != nil {
		return cols, err
	}
	if cols.education, err = json.Marshal(cv.Education); err != nil {
		return cols, err
	}
	if cols.experience, err = json.Marshal(cv.Experience); err != nil {
		return cols, err
	}
	if cols.skills, err = json.Marshal(cv.Skills); err != nil {
		return cols, err
	}
	if cols.projects, err = json.Marshal(cv.Projects); err != nil {
		return cols, err
	}
	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCV(row rowScanner) (CV, error) {
	var cv CV
	var personalInfo, education, experience, skills, projects []byte
	err := row.Scan(
		&cv.ID,
		&cv.UserID,
		&cv.Title,
		&personalInfo,
		&education,
		&experience,
		&skills,
		&projects,
		&cv.Progress,
		&cv.LastUpdated,
		&cv.CreatedAt,
	)
	if err != nil {
		return CV{}, err
	}
	if err := json.Unmarshal(personalInfo, &cv.PersonalInfo); err != nil {
		return CV{}, err
	}
	if err := json.Unmarshal(education, &cv.Education); err != nil {
		return CV{}, err
	}
	if err := json.Unmarshal(experience, &cv.Experience); err != nil {
		return CV{}, err
	}
	if err := json.Unmarshal(skills, &cv.Skills); err != nil {
		return CV{}, err
	}
	if err := json.Unmarshal(projects, &cv.Projects); err != nil {
		return CV{}, err
	}
	cv.emptySections()
	return cv, nil
}
