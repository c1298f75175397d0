// Package apperr holds error types shared by every domain package. Sentinel
// errors that belong to a single domain stay in that domain's package.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports missing or malformed user input. Fields lists the
// offending field names so the client can display them.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// NewValidation builds a ValidationError for the given field names.
func NewValidation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// RequireFields returns a ValidationError naming every field whose value is
// empty, or nil when all are present.
func RequireFields(fields map[string]string) *ValidationError {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ValidationError{Fields: missing}
}
