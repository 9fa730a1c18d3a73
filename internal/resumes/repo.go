package resumes

import "context"

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, userID, resumeID string) (Resume, error)
	AttachFile(ctx context.Context, userID, resumeID, storagePath, mimeType string, sizeBytes int64) error
	UpdateStatus(ctx context.Context, resumeID, status, failureCode string) error
	UpdateJobField(ctx context.Context, resumeID, jobField string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
}
