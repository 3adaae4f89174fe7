package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a required field that is missing or blank.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func requireNonBlank(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return &ValidationError{Field: f[0]}
		}
	}
	return nil
}
