package normalize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/onething-labs/onething-go/core"
)

func TestAPIError400(t *testing.T) {
	body := []byte(`{"error":{"message":"invalid model"}}`)
	err := APIError(400, body, "req-123")

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}

	if apiErr.Status != 400 {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if apiErr.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want req-123", apiErr.RequestID)
	}
	if apiErr.Message != "invalid model" {
		t.Errorf("Message = %q, want invalid model", apiErr.Message)
	}
	if !errors.Is(err, core.ErrBadRequest) {
		t.Error("expected error to wrap ErrBadRequest")
	}
}

func TestAPIErrorEmptyBodyFallsBackToStatusText(t *testing.T) {
	err := APIError(503, nil, "")

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Message != "Service Unavailable" {
		t.Errorf("Message = %q, want Service Unavailable", apiErr.Message)
	}
	if !errors.Is(err, core.ErrServer) {
		t.Error("expected error to wrap ErrServer")
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"nested", []byte(`{"error":{"message":"quota exceeded"}}`), "quota exceeded"},
		{"flat", []byte(`{"message":"not found"}`), "not found"},
		{"nested wins", []byte(`{"error":{"message":"nested"},"message":"flat"}`), "nested"},
		{"raw text", []byte("  upstream timeout \n"), "upstream timeout"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.body); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentinelForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{400, core.ErrBadRequest},
		{401, core.ErrUnauthorized},
		{403, core.ErrUnauthorized},
		{404, core.ErrNotFound},
		{429, core.ErrRateLimited},
		{500, core.ErrServer},
		{503, core.ErrServer},
		{418, core.ErrServer},
	}

	for _, tt := range tests {
		if got := SentinelForStatus(tt.status); !errors.Is(got, tt.want) {
			t.Errorf("SentinelForStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNetworkErrorKeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial: %w", context.Canceled)
	err := NetworkError(cause)

	if !errors.Is(err, core.ErrNetwork) {
		t.Error("expected error to wrap ErrNetwork")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected cancellation to stay on the chain")
	}
}

func TestDecodeErrorNotRetryable(t *testing.T) {
	err := DecodeError(errors.New("unexpected end of JSON input"))

	if !errors.Is(err, core.ErrDecode) {
		t.Error("expected error to wrap ErrDecode")
	}
	if core.IsRetryable(err) {
		t.Error("IsRetryable() = true for decode error")
	}
}
