// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	"context"
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies failures so callers can decide whether a task stops,
// a run aborts, or the process exits non-zero.
// Values are stable because they show up in run summaries; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeTransport is for network failures (dial, reset, timeout)
	ErrorCodeTransport

	// ErrorCodeStatus is for upstream non-2xx responses
	ErrorCodeStatus

	// ErrorCodeMalformed is for response bodies that are not valid JSON
	ErrorCodeMalformed

	// ErrorCodeConfig is for missing or unreadable task plans and settings
	ErrorCodeConfig

	// ErrorCodeValidation is for plan or input values that fail validation
	ErrorCodeValidation

	// ErrorCodeInvalidArgument is for bad parameters passed by a caller
	ErrorCodeInvalidArgument

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeDuplicateKey is for unique constraint violations
	ErrorCodeDuplicateKey

	// ErrorCodeStorage is for partition store I/O and database failures
	ErrorCodeStorage

	// ErrorCodeUnavailable is for transient errors where retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeCanceled is for work abandoned because the run context ended
	ErrorCodeCanceled
)

var codeLabels = map[ErrorCode]string{
	ErrorCodeUnknown:         "unknown",
	ErrorCodeTransport:       "transport",
	ErrorCodeStatus:          "status",
	ErrorCodeMalformed:       "malformed",
	ErrorCodeConfig:          "config",
	ErrorCodeValidation:      "validation",
	ErrorCodeInvalidArgument: "invalid_argument",
	ErrorCodeNotFound:        "not_found",
	ErrorCodeDuplicateKey:    "duplicate_key",
	ErrorCodeStorage:         "storage",
	ErrorCodeUnavailable:     "unavailable",
	ErrorCodeCanceled:        "canceled",
}

// String returns a short snake_case label used in logs and summaries
func (c ErrorCode) String() string {
	if s, ok := codeLabels[c]; ok {
		return s
	}
	return "unknown"
}


// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Message returns the message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown.
// Bare context errors are reported as Canceled
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return ErrorCodeCanceled
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is re-exports errors.Is to reduce import noise at call sites
func Is(err, target error) bool { return stderrs.Is(err, target) }

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// Transportf returns a transport error wrapping cause
func Transportf(cause error, format string, a ...any) error {
	return Wrapf(cause, ErrorCodeTransport, format, a...)
}

// Statusf returns an upstream status error
func Statusf(format string, a ...any) error { return Newf(ErrorCodeStatus, format, a...) }

// Malformedf returns a malformed payload error wrapping cause
func Malformedf(cause error, format string, a ...any) error {
	return Wrapf(cause, ErrorCodeMalformed, format, a...)
}

// Configf returns a configuration error
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfig, format, a...) }

// Storagef returns a storage error wrapping cause
func Storagef(cause error, format string, a ...any) error {
	return Wrapf(cause, ErrorCodeStorage, format, a...)
}

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Unavailablef returns an unavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// FromContext maps a context failure to ErrorCodeCanceled, leaving other errors untouched
func FromContext(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeCanceled, "canceled")
	}
	return err
}

// Retry semantics

// Retryable reports whether the error is retryable. Delegates to backend-specific logic.
// Currently backed by Postgres helpers in pg.go (IsRetryable) plus the Unavailable code
func Retryable(err error) bool { return IsRetryable(err) || IsCode(err, ErrorCodeUnavailable) }

// TaskFatal reports whether err must end the current crawl task.
// Field-level problems (validation, bad arguments) are recoverable per record
func TaskFatal(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeValidation, ErrorCodeInvalidArgument:
		return false
	}
	return true
}
