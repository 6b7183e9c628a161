// Package errors provides structured error types for organigram.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, server and pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (flags, config, identifiers)
//   - Data-integrity codes: the record set does not form a single rooted tree
//   - SOURCE_*: The hierarchy data source failed
//   - WRITE_FAILED: The rendered artifact could not be persisted
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMultipleRoots, "found %d root records", n)
//	if errors.IsDataIntegrity(err) {
//	    // Abort the run, nothing was rendered
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWrite, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidSource Code = "INVALID_SOURCE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Data-integrity errors
	ErrCodeNoRoot         Code = "NO_ROOT"
	ErrCodeMultipleRoots  Code = "MULTIPLE_ROOTS"
	ErrCodeDanglingParent Code = "DANGLING_PARENT"
	ErrCodeDuplicateID    Code = "DUPLICATE_ID"
	ErrCodeCycle          Code = "CYCLE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Source and output errors
	ErrCodeSource  Code = "SOURCE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeWrite   Code = "WRITE_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// dataIntegrity lists the codes that mean the input is not a single rooted tree.
var dataIntegrity = map[Code]bool{
	ErrCodeNoRoot:         true,
	ErrCodeMultipleRoots:  true,
	ErrCodeDanglingParent: true,
	ErrCodeDuplicateID:    true,
	ErrCodeCycle:          true,
}

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

// IsDataIntegrity reports whether err signals a record set that is not a
// single rooted tree.
func IsDataIntegrity(err error) bool {
	return dataIntegrity[GetCode(err)]
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
