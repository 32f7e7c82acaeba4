// Package errors provides structured error types for flowlens.
//
// The analysis core distinguishes four failure classes and each one maps to a
// code here:
//   - INVALID_INPUT: malformed input that could not be recovered locally
//   - NOT_FOUND: a named function, file or node does not exist
//   - NO_DATA: the input was readable but produced nothing (zero statements,
//     zero functions)
//   - IO: a file or network resource could not be read or written
//
// Malformed lines inside an otherwise readable input are not errors at all;
// parsers skip them and report diagnostics instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoData, "no statements in %s", path)
//	if errors.Is(err, errors.ErrCodeNoData) {
//	    // empty input
//	}
//
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidAlgorithm Code = "INVALID_ALGORITHM"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Missing referents
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"
	ErrCodeFunctionNotFound Code = "FUNCTION_NOT_FOUND"

	// Empty results
	ErrCodeNoData Code = "NO_DATA"

	// I/O and transport
	ErrCodeIO      Code = "IO_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeBusy    Code = "BUSY"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// IsNoData reports whether err signals an empty result rather than a failure.
func IsNoData(err error) bool {
	return Is(err, ErrCodeNoData)
}

// HTTPStatus maps an error code to the status the HTTP API answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidAlgorithm, ErrCodeInvalidPath:
		return 400
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeFunctionNotFound:
		return 404
	case ErrCodeBusy:
		return 409
	case ErrCodeNoData:
		return 422
	case ErrCodeTimeout:
		return 504
	default:
		return 500
	}
}
