package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ResumeID    string    `json:"resumeId"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	JobField    string    `json:"jobField,omitempty"`
	Status      string    `json:"status"`
	FailureCode string    `json:"failureCode,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func toResponse(resume Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:    resume.ID,
		FileName:    resume.FileName,
		MimeType:    resume.MimeType,
		SizeBytes:   resume.SizeBytes,
		JobField:    resume.JobField,
		Status:      resume.Status,
		FailureCode: resume.FailureCode,
		UploadedAt:  resume.UploadedAt,
	}
}
