package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, file_name, file_type, storage_path, size_bytes, job_field, status, failure_code, uploaded_at, updated_at`

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_name,
    file_type,
    storage_path,
    size_bytes,
    job_field,
    status,
    uploaded_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

	var jobField sql.NullString
	if resume.JobField != "" {
		jobField = sql.NullString{String: resume.JobField, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		resume.ID,
		resume.UserID,
		resume.FileName,
		resume.MimeType,
		resume.StoragePath,
		resume.SizeBytes,
		jobField,
		resume.Status,
		resume.UploadedAt,
	)
	return err
}

// GetByID fetches a resume by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, resumeID)
	resume, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// AttachFile records the stored file for a resume.
func (r *PGRepo) AttachFile(ctx context.Context, userID, resumeID, storagePath, mimeType string, sizeBytes int64) error {
	const query = `
UPDATE resumes
SET storage_path = $1, file_type = $2, size_bytes = $3, updated_at = now()
WHERE user_id = $4 AND id = $5`
	res, err := r.DB.ExecContext(ctx, query, storagePath, mimeType, sizeBytes, userID, resumeID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves a resume through its lifecycle. The guard clause keeps
// terminal completed rows from being overwritten by late failures.
func (r *PGRepo) UpdateStatus(ctx context.Context, resumeID, status, failureCode string) error {
	const query = `
UPDATE resumes
SET status = $1, failure_code = $2, updated_at = now()
WHERE id = $3 AND status <> 'completed'`
	res, err := r.DB.ExecContext(ctx, query, status, failureCode, resumeID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateJobField records the job field chosen at analyze time so the status
// document reflects what the analysis actually used.
func (r *PGRepo) UpdateJobField(ctx context.Context, resumeID, jobField string) error {
	const query = `
UPDATE resumes
SET job_field = $1, updated_at = now()
WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, jobField, resumeID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists resumes ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resume
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	var jobField sql.NullString
	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.FileName,
		&resume.MimeType,
		&resume.StoragePath,
		&resume.SizeBytes,
		&jobField,
		&resume.Status,
		&resume.FailureCode,
		&resume.UploadedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	if jobField.Valid {
		resume.JobField = jobField.String
	}
	return resume, nil
}

var _ Repo = (*PGRepo)(nil)
