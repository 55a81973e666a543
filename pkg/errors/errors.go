// Package errors provides structured error types for logicview.
//
// Every rejected scene operation reports one of a small set of codes so that
// callers (the terminal editor, scenario replay, the inspection server) can
// turn it into a user-facing message without string matching:
//   - NOT_FOUND: id lookup miss on find/remove
//   - INVALID_TARGET: scope navigation or attachment to something that cannot hold it
//   - DIRECTION_MISMATCH: tie attempted between two gates of the same direction
//   - INDEX_OUT_OF_RANGE: pin accessors past the end of a gate list
//   - INVALID_INPUT / INVALID_FORMAT: bad values from callers or scripts
//   - FEEDBACK_LOOP: signal-order analysis found a cycle
//
// None of these are fatal. An operation that returns one has left the scene
// exactly as it was.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "no element with id %d in scope", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Show the message, keep going
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for scene operations.
const (
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeInvalidTarget     Code = "INVALID_TARGET"
	ErrCodeDirectionMismatch Code = "DIRECTION_MISMATCH"
	ErrCodeIndexOutOfRange   Code = "INDEX_OUT_OF_RANGE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Analysis errors
	ErrCodeFeedbackLoop Code = "FEEDBACK_LOOP"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// LoopError reports a feedback loop found while ordering elements.
// Elements holds the ids of the elements on the loop in ascending order.
type LoopError struct {
	Elements []uint64
}

// Error implements the error interface.
func (e *LoopError) Error() string {
	return fmt.Sprintf("feedback loop through elements %v", e.Elements)
}

// Code returns the error code for this error type.
func (e *LoopError) Code() Code {
	return ErrCodeFeedbackLoop
}
