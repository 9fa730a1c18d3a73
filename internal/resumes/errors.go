package resumes

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidJobField     = errors.New("unknown job field")
	ErrInvalidTransition   = errors.New("invalid status transition")
)
