// Package apperr defines the error taxonomy shared by the document service
// and the capture/transport client, with HTTP status mapping for handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageWriteFailed Code = "STORAGE_WRITE_FAILED"
	CodeStorageDelete      Code = "STORAGE_DELETE_FAILED"
	CodePartialDelete      Code = "PARTIAL_DELETE_FAILURE"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeCaptureUnsupported Code = "CAPTURE_UNSUPPORTED"
	CodeUnsupportedFormat  Code = "UNSUPPORTED_FORMAT"
	CodeInternal           Code = "INTERNAL"
)

// Error carries a code, a human-readable message, the HTTP status a handler
// should answer with, optional details, and the wrapped cause.
type Error struct {
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an Error with an explicit code and status.
func New(code Code, message string, httpStatus int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Validation reports caller-supplied input as incomplete or inconsistent.
// No store has been touched when a validation error is returned.
func Validation(message string) *Error {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// MissingField names the required field that was absent.
func MissingField(field string) *Error {
	return Validation(field + " is required").WithDetail("field", field)
}

// NotFound reports an identifier that does not resolve in the metadata store.
func NotFound(kind, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", kind, id), http.StatusNotFound).
		WithDetail("id", id)
}

// StorageWriteFailed reports a failed blob upload. The metadata record may
// already exist; the caller decides between retry and compensating delete.
func StorageWriteFailed(key string) *Error {
	return New(CodeStorageWriteFailed, "blob upload failed", http.StatusInternalServerError).
		WithDetail("blobKey", key)
}

// StorageDeleteFailed reports a failed blob delete where metadata is intact.
func StorageDeleteFailed(key string) *Error {
	return New(CodeStorageDelete, "blob delete failed", http.StatusInternalServerError).
		WithDetail("blobKey", key)
}

// PartialDelete reports the metadata record gone but the blob left behind.
// Distinct from StorageDeleteFailed so operators can reconcile the leak.
func PartialDelete(key string) *Error {
	return New(CodePartialDelete, "metadata deleted but blob removal failed", http.StatusInternalServerError).
		WithDetail("blobKey", key)
}

// PermissionDenied reports a declined or unavailable capture permission.
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message, http.StatusForbidden)
}

// CaptureUnsupported reports an environment with no capture capability.
func CaptureUnsupported(message string) *Error {
	return New(CodeCaptureUnsupported, message, http.StatusInternalServerError)
}

// UnsupportedFormat reports an audio payload the client cannot use.
func UnsupportedFormat(message string) *Error {
	return New(CodeUnsupportedFormat, message, http.StatusBadRequest)
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return New(CodeInternal, message, http.StatusInternalServerError).WithCause(cause)
}

// CodeOf extracts the code from err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus extracts the status from err, or 500 for foreign errors.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
