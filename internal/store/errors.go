package store

import (
	"fmt"
	"net/http"
)

// Error is a storage error with an HTTP status code.
// Errors derived with WithMessage or WithCause still match their parent
// under errors.Is, so ErrGuideNotFound is also ErrNotFound.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	parent *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is e or one of the errors e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for p := e; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Err: e.Err, parent: e}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err, parent: e}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrConflict = &Error{
		Code:    http.StatusConflict,
		Message: "concurrent modification",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}
)

// Guide and tag errors.
var (
	ErrGuideNotFound   = ErrNotFound.WithMessage("guide not found")
	ErrSlugTaken       = ErrAlreadyExists.WithMessage("guide slug already taken")
	ErrVersionConflict = ErrConflict.WithMessage("guide version changed")

	ErrTagNotFound  = ErrNotFound.WithMessage("tag not found")
	ErrTagNameTaken = ErrAlreadyExists.WithMessage("tag name already taken")

	ErrUnknownCollection = ErrInvalidInput.WithMessage("unknown child collection")
)
