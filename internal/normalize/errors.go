// Package normalize converts raw API failures into the core error taxonomy.
package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/onething-labs/onething-go/core"
)

// errorBody matches the API's error envelope. The message may arrive nested
// under error.message or flat at the top level depending on the endpoint.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// APIError builds a classified error from an HTTP error response.
func APIError(status int, body []byte, requestID string) error {
	message := Message(body)
	if message == "" {
		message = http.StatusText(status)
	}
	return &core.APIError{
		Status:    status,
		RequestID: requestID,
		Message:   message,
		Body:      string(body),
		Err:       SentinelForStatus(status),
	}
}

// Message extracts a best-effort human-readable message from an error body:
// the nested error.message field, then the top-level message field, else the
// raw body text.
func Message(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error.Message != "" {
			return eb.Error.Message
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// NetworkError wraps a transport-level failure. The cause stays on the
// chain so context cancellation remains visible to errors.Is.
func NetworkError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", core.ErrNetwork, err),
	}
}

// DecodeError wraps a JSON decode failure. Decode errors are never retried.
func DecodeError(err error) error {
	return &core.APIError{
		Message: err.Error(),
		Err:     core.ErrDecode,
	}
}

// SentinelForStatus maps an HTTP status code to a core sentinel error.
func SentinelForStatus(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return core.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.ErrUnauthorized
	case status == http.StatusNotFound:
		return core.ErrNotFound
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimited
	case status >= 500:
		return core.ErrServer
	default:
		return core.ErrServer
	}
}
