package analyses

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("analysis already exists")
	ErrStillRunning  = errors.New("analysis still running")
)

// FailedError reports a resume whose analysis ended in failure, carrying the
// stable failure code recorded on the status document.
type FailedError struct {
	FailureCode string
}

func (e *FailedError) Error() string {
	if e.FailureCode == "" {
		return "analysis failed"
	}
	return "analysis failed: " + e.FailureCode
}

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
