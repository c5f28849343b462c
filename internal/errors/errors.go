package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error crossing an engine or repository boundary
type Code string

const (
	CodeUnknown         Code = "unknown"
	CodeInvalidArgument Code = "invalid_argument"
	CodeNotFound        Code = "not_found"
	CodeAlreadyExists   Code = "already_exists"
	CodeInternal        Code = "internal"
	CodeUnavailable     Code = "unavailable"
	CodeUnimplemented   Code = "unimplemented"

	// CodeValidation marks malformed rule or item data
	CodeValidation Code = "validation"

	// CodeRestricted marks an item deletion blocked by a grant restriction
	CodeRestricted Code = "restricted"

	// CodeCancelled marks an operation abandoned by a rule element (e.g. a choice was declined)
	CodeCancelled Code = "cancelled"
)

// Error is an engine error with a code and optional metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error returns the message, including the cause when present
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a metadata value and returns the error for chaining
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err, keeping the code of an existing *Error
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:    existing.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(existing.Meta),
		}
	}

	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// Wrapf wraps err with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and overrides its code
func WrapWithCode(err error, code Code, message string) *Error {
	wrapped := Wrap(err, message)
	if wrapped == nil {
		return nil
	}
	wrapped.Code = code
	return wrapped
}

// NotFound creates a not found error
func NotFound(message string) *Error { return New(CodeNotFound, message) }

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// AlreadyExistsf creates a formatted already exists error
func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error { return Newf(CodeInternal, format, args...) }

// Validationf creates a formatted validation error
func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// Restrictedf creates a formatted restriction error
func Restrictedf(format string, args ...any) *Error { return Newf(CodeRestricted, format, args...) }

// Cancelledf creates a formatted cancellation error
func Cancelledf(format string, args ...any) *Error { return Newf(CodeCancelled, format, args...) }

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound checks for a not found error
func IsNotFound(err error) bool { return Is(err, CodeNotFound) }

// IsInvalidArgument checks for an invalid argument error
func IsInvalidArgument(err error) bool { return Is(err, CodeInvalidArgument) }

// IsAlreadyExists checks for an already exists error
func IsAlreadyExists(err error) bool { return Is(err, CodeAlreadyExists) }

// IsValidation checks for a validation error
func IsValidation(err error) bool { return Is(err, CodeValidation) }

// IsRestricted checks for a grant restriction error
func IsRestricted(err error) bool { return Is(err, CodeRestricted) }

// IsCancelled checks if an error is a cancelled error
func IsCancelled(err error) bool { return Is(err, CodeCancelled) }

// GetCode returns the code of err, or CodeUnknown
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// GetMeta returns the metadata attached to err
func GetMeta(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
