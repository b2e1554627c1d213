package errors

import (
	"errors"
	"fmt"
)

// AppError is the unified rpckit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the ErrorCode of err, or "" if err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// --- Common Error Constructors ---

// Connection creates a new AppError for a failed connection or trust resolution.
func Connection(target string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeConnection,
		Message:   fmt.Sprintf("Unable to connect to %s.", target),
		Retryable: true,
		Details:   map[string]any{"target": target},
		Cause:     cause,
	}
}

// CertificateParse creates a new AppError for an unusable peer certificate.
func CertificateParse(target string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeCertificateParse,
		Message:   fmt.Sprintf("The certificate presented by %s could not be parsed.", target),
		Retryable: false,
		Details:   map[string]any{"target": target},
		Cause:     cause,
	}
}
