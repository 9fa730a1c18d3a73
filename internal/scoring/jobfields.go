package scoring

import "strings"

// JobFields is the set of job fields offered for tailored scoring.
var JobFields = []string{
	"Software Development",
	"Data Science",
	"Product Management",
	"Marketing",
	"Sales",
	"Finance",
	"Human Resources",
	"Design",
	"Customer Support",
	"Other",
}

// IsKnownJobField reports whether raw matches one of the offered job fields.
func IsKnownJobField(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, f := range JobFields {
		if strings.EqualFold(trimmed, f) {
			return true
		}
	}
	return false
}

// CanonicalJobField maps raw input onto the canonical spelling of a job
// field. Unrecognized and empty values map to the empty string so callers
// fall back to generic scoring.
func CanonicalJobField(raw string) string {
	trimmed := strings.TrimSpace(raw)
	for _, f := range JobFields {
		if strings.EqualFold(trimmed, f) {
			return f
		}
	}
	return ""
}
