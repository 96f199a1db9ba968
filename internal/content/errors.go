package content

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidContentType is returned for a content kind outside the supported set.
	ErrInvalidContentType = errors.New("invalid content type")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func required(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}
