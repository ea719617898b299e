// Package domain provides the canonical types shared across the gateway:
// capabilities, media classification, and the error taxonomy surfaced to
// tool callers.
package domain

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a tool invocation failure.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates required settings are missing; the
	// failure is detected before any network call is made.
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeUnsupportedCapability indicates the capability is not
	// available in the current provider mode (e.g. video under Azure).
	ErrorTypeUnsupportedCapability ErrorType = "unsupported_capability"

	// ErrorTypeUpstream indicates the provider call failed.
	ErrorTypeUpstream ErrorType = "upstream"

	// ErrorTypeMalformedResponse indicates the provider response is missing
	// fields required to extract a payload.
	ErrorTypeMalformedResponse ErrorType = "malformed_response"

	// ErrorTypeStorage indicates a blob upload failed.
	ErrorTypeStorage ErrorType = "storage"

	// ErrorTypeInvalidRequest indicates the caller supplied an argument
	// outside the accepted range or enum.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
)

// ToolError is the canonical error returned by every stage of the dispatch
// pipeline. None of these are retried or recovered locally; each is surfaced
// to the caller as a tool-invocation failure.
type ToolError struct {
	// Type is the category of error.
	Type ErrorType

	// Message is the human-readable error message, naming the missing
	// configuration or the failing stage.
	Message string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// AsToolError extracts a *ToolError from err, or wraps err as an upstream
// failure when it carries no taxonomy type.
func AsToolError(err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return &ToolError{Type: ErrorTypeUpstream, Message: "provider call failed", Err: err}
}

// Convenience constructors for the taxonomy.

// ErrConfiguration creates a configuration error.
func ErrConfiguration(message string) *ToolError {
	return &ToolError{Type: ErrorTypeConfiguration, Message: message}
}

// ErrUnsupportedCapability creates an unsupported-capability error.
func ErrUnsupportedCapability(message string) *ToolError {
	return &ToolError{Type: ErrorTypeUnsupportedCapability, Message: message}
}

// ErrUpstream creates an upstream error wrapping the provider failure.
func ErrUpstream(message string, err error) *ToolError {
	return &ToolError{Type: ErrorTypeUpstream, Message: message, Err: err}
}

// ErrMalformedResponse creates a malformed-response error.
func ErrMalformedResponse(message string) *ToolError {
	return &ToolError{Type: ErrorTypeMalformedResponse, Message: message}
}

// ErrStorage creates a storage error wrapping the upload failure.
func ErrStorage(message string, err error) *ToolError {
	return &ToolError{Type: ErrorTypeStorage, Message: message, Err: err}
}

// ErrInvalidRequest creates an invalid-request error.
func ErrInvalidRequest(message string) *ToolError {
	return &ToolError{Type: ErrorTypeInvalidRequest, Message: message}
}
