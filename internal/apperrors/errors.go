package apperrors

import "errors"

// Common errors
var (
	// ErrInvalidIdentifier is returned when a path id is not a valid store identifier.
	ErrInvalidIdentifier = errors.New("invalid id")
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when a request fails field constraints.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the document store is not configured or unreachable.
	ErrStoreUnavailable = errors.New("database not available")
)

// Error carries a user facing message and optional per-field details on top of a sentinel.
type Error struct {
	Err     error
	Message string
	Fields  map[string]string
}

// Error implements error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a message.
func New(err error, message string) *Error {
	return &Error{Err: err, Message: message}
}

// WithFields attaches per-field messages.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

// NotFound returns an ErrNotFound with the given message.
func NotFound(message string) error {
	return New(ErrNotFound, message)
}

// InvalidIdentifier returns an ErrInvalidIdentifier with the given message.
func InvalidIdentifier(message string) error {
	return New(ErrInvalidIdentifier, message)
}

// Validation returns an ErrValidation with the given message.
func Validation(message string) *Error {
	return New(ErrValidation, message)
}

// StoreUnavailable wraps cause as ErrStoreUnavailable. The cause is kept for logs only.
func StoreUnavailable(cause error) error {
	if cause == nil {
		return New(ErrStoreUnavailable, "Database not configured")
	}
	return &Error{Err: errors.Join(ErrStoreUnavailable, cause), Message: "Database not available"}
}

// FieldsOf returns the per-field details carried by err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
