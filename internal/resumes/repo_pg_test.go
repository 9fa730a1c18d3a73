package resumes

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateInsertsJobField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	resume := Resume{
		ID:         "resume-1",
		UserID:     "user-1",
		FileName:   "cv.pdf",
		MimeType:   "application/pdf",
		SizeBytes:  1234,
		JobField:   "Software Development",
		Status:     StatusUploading,
		UploadedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(
			resume.ID,
			resume.UserID,
			resume.FileName,
			resume.MimeType,
			resume.StoragePath,
			resume.SizeBytes,
			sqlmock.AnyArg(), // job_field
			resume.Status,
			sqlmock.AnyArg(), // uploaded_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), resume); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDMapsNoRowsToNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "user-1", "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusSkipsCompletedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE resumes").
		WithArgs(StatusFailed, "INTERNAL_ERROR", "resume-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateStatus(context.Background(), "resume-1", StatusFailed, "INTERNAL_ERROR"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound when no rows updated, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateJobField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE resumes").
		WithArgs("Data Science", "resume-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateJobField(context.Background(), "resume-1", "Data Science"); err != nil {
		t.Fatalf("UpdateJobField: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "file_name", "file_type", "storage_path", "size_bytes",
		"job_field", "status", "failure_code", "uploaded_at", "updated_at",
	}).
		AddRow("resume-2", "user-1", "b.pdf", "application/pdf", "p/b", int64(10), "Design", StatusCompleted, "", now, now).
		AddRow("resume-1", "user-1", "a.txt", "text/plain", "p/a", int64(5), nil, StatusFailed, "STORAGE_ERROR", now.Add(-time.Hour), now)

	mock.ExpectQuery("SELECT (.+) FROM resumes").
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	out, err := repo.ListByUser(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(out))
	}
	if out[0].JobField != "Design" {
		t.Fatalf("job field = %q, want Design", out[0].JobField)
	}
	if out[1].JobField != "" {
		t.Fatalf("null job field should scan to empty, got %q", out[1].JobField)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
