package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrDuplicateIdentity  = errors.New("email or username already registered")
	ErrUnknownRole        = errors.New("unknown role")

	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
)

var (
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", ErrDuplicateIdentity)
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", ErrDuplicateIdentity)
)

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
