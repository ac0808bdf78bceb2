package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classification. All structured errors returned by the
// SDK wrap one of these, so callers can branch with errors.Is.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrServer           = errors.New("server error")
	ErrNetwork          = errors.New("network error")
	ErrDecode           = errors.New("decode error")
	ErrJobFailed        = errors.New("job failed")
	ErrAttemptsExceeded = errors.New("polling attempts exceeded")
	ErrStream           = errors.New("stream error")
)

// APIError is an error response from the API with full context.
type APIError struct {
	Status    int    // HTTP status code; zero for network and decode failures
	RequestID string // Correlation ID, when the server echoed one
	Message   string // Best-effort message extracted from the error body
	Body      string // Raw response body
	Err       error  // Classification sentinel
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("onething: %s (status=%d, request_id=%s)", e.Message, e.Status, e.RequestID)
	}
	return fmt.Sprintf("onething: %s (status=%d)", e.Message, e.Status)
}

// Unwrap returns the classification sentinel for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request that failed local validation. It is
// raised before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %q: %s", e.Field, e.Message)
}

// JobError reports a job that reached the failed terminal state. Payload
// carries the server-reported error value verbatim.
type JobError struct {
	JobID   string
	Payload any
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("job %s failed: %v", e.JobID, e.Payload)
}

// Unwrap returns ErrJobFailed for error chaining.
func (e *JobError) Unwrap() error {
	return ErrJobFailed
}

// IsRetryable reports whether a failed request may be retried.
//
// Network failures are retryable. HTTP errors are retryable unless the
// status is in the 400-499 range, with 429 as the one retryable exception.
// Context cancellation, decode failures, and validation failures are never
// retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrDecode) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			// No status means the request never completed (network failure).
			return errors.Is(apiErr.Err, ErrNetwork)
		}
		return retryableStatus(apiErr.Status)
	}

	return errors.Is(err, ErrNetwork)
}

// retryableStatus reports whether an HTTP status code indicates a transient
// failure.
func retryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status < 400 || status >= 500
}
