package resumes

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid resume input")
)

// FieldError reports a single invalid field. It matches ErrInvalidInput.
type FieldError struct {
	Field string
	Issue string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Issue)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidInput
}
