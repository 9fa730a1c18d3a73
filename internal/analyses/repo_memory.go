package analyses

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Analysis // resumeId -> analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Analysis),
	}
}

// Create stores the analysis, enforcing one analysis per resume.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[analysis.ResumeID]; ok {
		return ErrAlreadyExists
	}
	r.data[analysis.ResumeID] = analysis
	return nil
}

// GetByResumeID returns the analysis for a resume.
func (r *MemoryRepo) GetByResumeID(ctx context.Context, resumeID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.data[resumeID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// DeleteByResumeID removes the analysis so a retry can write a fresh one.
func (r *MemoryRepo) DeleteByResumeID(ctx context.Context, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, resumeID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
