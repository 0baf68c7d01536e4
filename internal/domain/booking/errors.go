package booking

import (
	"errors"
	"fmt"
)

// Error kinds let handlers map domain failures onto HTTP statuses without
// string matching.
const (
	KindValidation  = "validation"
	KindConflict    = "conflict"
	KindNotEligible = "not_eligible"
	KindNotFound    = "not_found"
)

// Error is a typed domain error.
type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewNotEligibleError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotEligible, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the domain error kind, or "" for foreign errors.
func KindOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
