package util

import (
	"errors"
	"strings"
)

// Storage keys embed the sanitized name, so keep it short enough for any
// backing store.
const maxFileNameLen = 180

// SanitizeFileName removes path separators and rejects traversal patterns.
// Overlong names are truncated from the front so the extension survives.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		s = s[len(s)-maxFileNameLen:]
	}
	return s, nil
}
