// Package errors provides structured error types for dotprep.
//
// Errors carry a machine-readable [Code] so callers can tell recoverable,
// per-diagram failures apart from fatal ones:
//   - CONFIG_ERROR: the settings file could not be read or parsed
//   - ENGINE_NOT_FOUND, RENDER_FAILED: the layout engine is missing or failed
//   - FILE_NOT_FOUND, INVALID_*, INTERNAL_ERROR: everything else, fatal to a run
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEngineNotFound, "%s not found in PATH", name)
//	if errors.Is(err, errors.ErrCodeEngineNotFound) {
//	    // skip this diagram
//	}
//
//	err := errors.Wrap(errors.ErrCodeConfig, origErr, "parse %s", path)
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
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidEngine Code = "INVALID_ENGINE"

	// Configuration errors (recovered by falling back to defaults)
	ErrCodeConfig Code = "CONFIG_ERROR"

	// Renderer errors (recovered per diagram)
	ErrCodeEngineNotFound Code = "ENGINE_NOT_FOUND"
	ErrCodeRender         Code = "RENDER_FAILED"

	// Filesystem errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
// It checks *Error values as well as typed errors exposing a Code method
// (such as [RenderError]).
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if err carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message and its causes without code
// prefixes. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}

// RenderError reports a layout engine that ran but rejected its input.
type RenderError struct {
	Engine string // engine name, e.g. "dot" or "builtin"
	Stderr string // diagnostic output captured from the engine
	Err    error  // exit status or library error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Engine, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error { return e.Err }

// Code returns the error code for this error type.
func (e *RenderError) Code() Code {
	return ErrCodeRender
}

// IsRenderFailure reports whether err is a per-diagram failure: the engine is
// missing or it rejected the description. Such errors never abort a run.
func IsRenderFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeEngineNotFound, ErrCodeRender:
		return true
	}
	return false
}
