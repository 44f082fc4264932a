package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("missing required fields")
	ErrInvalidDueDate = errors.New("invalid dueDate")
	ErrStatusNotFound = errors.New("status does not exist")
	ErrUserNotFound   = errors.New("user does not exist")
	ErrTaskNotFound   = errors.New("task not found")
	ErrStatusExists   = errors.New("status already exists")
)

// MissingFieldError reports the first required field absent from a full replace.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
