package resumes

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-ats/internal/scoring"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/storage/object"
)

// Service contains business logic for resumes.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

// Create registers a resume record before its file is attached. The declared
// MIME type is checked against the upload allow-list up front so the client
// learns about unsupported types before transferring any bytes.
func (s *Service) Create(ctx context.Context, userID, fileName, mimeType, jobField string) (Resume, error) {
	if userID == "" {
		return Resume{}, errors.New("user id required")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Resume{}, ErrInvalidInput
	}
	mimeType = strings.TrimSpace(mimeType)
	if !IsAllowedMimeType(mimeType) {
		return Resume{}, ErrUnsupportedFileType
	}

	canonical := scoring.CanonicalJobField(jobField)
	if strings.TrimSpace(jobField) != "" && canonical == "" {
		return Resume{}, ErrInvalidJobField
	}

	now := time.Now().UTC()
	resume := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   mimeType,
		JobField:   canonical,
		Status:     StatusUploading,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

// AttachFile saves the uploaded bytes to object storage and records the
// storage path. The sniffed MIME type wins over the declared one.
func (s *Service) AttachFile(ctx context.Context, userID, resumeID string, r io.Reader) (Resume, error) {
	resume, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if resume.Status != StatusUploading && resume.Status != StatusFailed {
		return Resume{}, ErrInvalidTransition
	}

	storagePath, size, detected, err := s.Store.Save(ctx, userID, resume.FileName, r)
	if err != nil {
		return Resume{}, err
	}

	mimeType := resume.MimeType
	if IsAllowedMimeType(detected) {
		mimeType = detected
	}

	if err := s.Repo.AttachFile(ctx, userID, resumeID, storagePath, mimeType, size); err != nil {
		return Resume{}, err
	}
	metrics.IncResumeUploaded()

	resume.StoragePath = storagePath
	resume.MimeType = mimeType
	resume.SizeBytes = size
	return resume, nil
}

// MarkFailed flips a resume that never finished uploading to failed. Clients
// use it as a compensating action when a transfer breaks after the record was
// created.
func (s *Service) MarkFailed(ctx context.Context, userID, resumeID, failureCode string) (Resume, error) {
	resume, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, err
	}
	if resume.Status == StatusCompleted {
		return Resume{}, ErrInvalidTransition
	}
	if resume.Status == StatusFailed {
		return resume, nil
	}
	if failureCode == "" {
		failureCode = "STORAGE_ERROR"
	}
	if err := s.Repo.UpdateStatus(ctx, resumeID, StatusFailed, failureCode); err != nil {
		return Resume{}, err
	}
	resume.Status = StatusFailed
	resume.FailureCode = failureCode
	return resume, nil
}

// Get returns a resume by ID for a user.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns resumes for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// OpenFile streams the stored resume file.
func (s *Service) OpenFile(ctx context.Context, userID, resumeID string) (io.ReadCloser, Resume, error) {
	resume, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return nil, Resume{}, err
	}
	if resume.StoragePath == "" || s.Store == nil {
		return nil, Resume{}, ErrNotFound
	}
	body, err := s.Store.Open(ctx, resume.StoragePath)
	if err != nil {
		return nil, Resume{}, err
	}
	return body, resume, nil
}
