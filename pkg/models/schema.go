package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateRecord checks the fields every emitted record must carry.
func ValidateRecord(rec MessageRecord) error {
	if rec.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "record ID is required",
		}
	}

	if rec.Code == "" {
		return &ValidationError{
			Field:   "code",
			Message: "record code is required",
		}
	}

	if !rec.Severity.Valid() {
		return &ValidationError{
			Field:   "severity",
			Message: fmt.Sprintf("invalid severity: %q (valid: info, warning, error, success)", rec.Severity),
		}
	}

	if rec.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "record timestamp is required",
		}
	}

	return nil
}
