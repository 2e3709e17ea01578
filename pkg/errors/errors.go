// Package errors provides structured error types for symlump.
//
// This package defines error codes and types that enable:
//   - Per-network failures that skip a network without aborting a batch
//   - Batch-level failures that abort the whole run
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by how a batch reacts to them:
//   - PARSE_ERROR, FILE_NOT_FOUND: malformed or missing artifacts (skip network)
//   - CONSISTENCY_ERROR: an oracle answer violated a group invariant (skip network)
//   - DEGENERATE_INPUT, GROUP_TOO_LARGE: input too large to analyze (skip network)
//   - TIMEOUT: the per-network budget was exhausted (skip network)
//   - ORACLE_UNAVAILABLE, STORAGE_ERROR: the batch cannot continue (fatal)
//
// Arithmetic degeneracies (overflow, log of zero, division by zero) are never
// errors; they surface as explicit infinity values in the results.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "line %d: unbalanced parenthesis", n)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // skip this network
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "write record %s", name)
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeParse        Code = "PARSE_ERROR"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Analysis errors
	ErrCodeConsistency     Code = "CONSISTENCY_ERROR"
	ErrCodeDegenerateInput Code = "DEGENERATE_INPUT"
	ErrCodeGroupTooLarge   Code = "GROUP_TOO_LARGE"
	ErrCodeTimeout         Code = "TIMEOUT"

	// Batch-level errors
	ErrCodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
	ErrCodeStorage           Code = "STORAGE_ERROR"

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

// Fatal reports whether err must abort a batch rather than skip one network.
//
// Oracle and storage failures affect every network equally, and a cancelled
// parent context means the user asked to stop. Everything else, including
// uncoded errors, is scoped to the network that produced it.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeOracleUnavailable, ErrCodeStorage:
		return true
	}
	return errors.Is(err, context.Canceled)
}
