package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByResumeID(ctx context.Context, resumeID string) (Analysis, error)
	DeleteByResumeID(ctx context.Context, resumeID string) error
}
