package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume // resumeId -> resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Resume),
	}
}

// Create stores a new resume record.
func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resume.ID] = resume
	return nil
}

// GetByID returns a resume by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.data[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

// AttachFile records the stored file for a resume.
func (r *MemoryRepo) AttachFile(ctx context.Context, userID, resumeID, storagePath, mimeType string, sizeBytes int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.data[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	resume.StoragePath = storagePath
	resume.MimeType = mimeType
	resume.SizeBytes = sizeBytes
	resume.UpdatedAt = time.Now().UTC()
	r.data[resumeID] = resume
	return nil
}

// UpdateStatus moves a resume through its lifecycle.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, resumeID, status, failureCode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.data[resumeID]
	if !ok {
		return ErrNotFound
	}
	if !ValidStatusTransition(resume.Status, status) {
		return ErrInvalidTransition
	}
	resume.Status = status
	resume.FailureCode = failureCode
	resume.UpdatedAt = time.Now().UTC()
	r.data[resumeID] = resume
	return nil
}

// UpdateJobField records the job field chosen at analyze time.
func (r *MemoryRepo) UpdateJobField(ctx context.Context, resumeID, jobField string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.data[resumeID]
	if !ok {
		return ErrNotFound
	}
	resume.JobField = jobField
	resume.UpdatedAt = time.Now().UTC()
	r.data[resumeID] = resume
	return nil
}

// ListByUser returns resumes for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var out []Resume
	for _, resume := range r.data {
		if resume.UserID == userID {
			out = append(out, resume)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})

	if len(out) == 0 || offset >= len(out) {
		return []Resume{}, nil
	}

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
