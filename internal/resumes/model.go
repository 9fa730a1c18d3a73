package resumes

import "time"

const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Resume represents an uploaded resume owned by a user.
type Resume struct {
	ID          string
	UserID      string
	FileName    string
	MimeType    string
	SizeBytes   int64
	StoragePath string
	JobField    string
	Status      string
	FailureCode string
	UploadedAt  time.Time
	UpdatedAt   time.Time
}

// AllowedMimeTypes lists the upload types the service accepts.
var AllowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

// IsAllowedMimeType reports whether the given MIME type may be uploaded.
func IsAllowedMimeType(mimeType string) bool {
	_, ok := AllowedMimeTypes[mimeType]
	return ok
}

// ValidStatusTransition reports whether a resume may move between the
// given statuses. Failed resumes may re-enter processing on retry.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case StatusUploading:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	case StatusFailed:
		return to == StatusProcessing
	case StatusCompleted:
		return false
	default:
		return false
	}
}
