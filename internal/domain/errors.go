package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but belongs to another user.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, duplicate title).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when a request carries no usable bearer
// token. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

// ErrInvalidCredentials is returned by login when the username/password pair
// does not match a user. It is a 400, not a 401: no token was presented.
var ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

// FieldError is a validation failure attributable to a single input field.
// It matches ErrValidation under errors.Is.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError returns a *FieldError for field with the given message.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return ErrValidation.Error() + ": " + e.Field + ": " + e.Message
}

// Unwrap lets errors.Is(err, ErrValidation) succeed for field errors.
func (e *FieldError) Unwrap() error { return ErrValidation }
