package onething

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onething-labs/onething-go/core"
)

// newTestClient builds a client against an httptest server. Retries are
// disabled so attempt counts stay deterministic; tests that exercise the
// retry loop pass their own config.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:     core.NewSecret("test-key"),
		BaseURL:    server.URL,
		MaxRetries: -1,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

// shortBackoff shrinks the retry backoff for the duration of a test.
func shortBackoff(t *testing.T) {
	t.Helper()
	old := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = old })
}

// recordingHook captures telemetry events for assertions.
type recordingHook struct {
	mu     sync.Mutex
	starts []core.RequestStart
	ends   []core.RequestEnd
	polls  []core.Poll
}

func (h *recordingHook) OnRequestStart(e core.RequestStart) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, e)
}

func (h *recordingHook) OnRequestEnd(e core.RequestEnd) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends = append(h.ends, e)
}

func (h *recordingHook) OnPoll(e core.Poll) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls = append(h.polls, e)
}

func TestDoSuccess(t *testing.T) {
	var gotAuth, gotContentType, gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"code":0,"message":"ok"}`))
	}))

	var out map[string]any
	if err := client.do(context.Background(), http.MethodPost, "/generation", map[string]any{"model": "m"}, &out); err != nil {
		t.Fatalf("do() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
	if out["message"] != "ok" {
		t.Errorf("message = %v, want ok", out["message"])
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	shortBackoff(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"code":0}`))
	}))
	defer server.Close()

	hook := &recordingHook{}
	client, err := New(Config{
		APIKey:     core.NewSecret("test-key"),
		BaseURL:    server.URL,
		MaxRetries: 3,
		Telemetry:  hook,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := client.do(context.Background(), http.MethodPost, "/generation", nil, nil); err != nil {
		t.Fatalf("do() error = %v", err)
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if len(hook.ends) != 1 {
		t.Fatalf("len(ends) = %d, want 1", len(hook.ends))
	}
	if hook.ends[0].Attempts != 3 {
		t.Errorf("RequestEnd.Attempts = %d, want 3", hook.ends[0].Attempts)
	}
	if hook.ends[0].Status != 200 {
		t.Errorf("RequestEnd.Status = %d, want 200", hook.ends[0].Status)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	shortBackoff(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := New(Config{
		APIKey:     core.NewSecret("test-key"),
		BaseURL:    server.URL,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = client.do(context.Background(), http.MethodPost, "/generation", nil, nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if !errors.Is(err, core.ErrServer) {
		t.Errorf("error = %v, want ErrServer", err)
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("error = %q, want max retries exceeded prefix", err)
	}
}

func TestDoNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Request-Id", "srv-456")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"no such job"}}`))
	}))

	err := client.do(context.Background(), http.MethodGet, "/generation/job/nope", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	var apiErr *core.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected APIError")
	}
	if apiErr.Status != 404 {
		t.Errorf("Status = %d, want 404", apiErr.Status)
	}
	if apiErr.Message != "no such job" {
		t.Errorf("Message = %q, want no such job", apiErr.Message)
	}
	if apiErr.RequestID != "srv-456" {
		t.Errorf("RequestID = %q, want server-echoed srv-456", apiErr.RequestID)
	}
}

func TestDoRetriesRateLimit(t *testing.T) {
	shortBackoff(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"code":0}`))
	}))
	defer server.Close()

	client, err := New(Config{
		APIKey:     core.NewSecret("test-key"),
		BaseURL:    server.URL,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := client.do(context.Background(), http.MethodPost, "/generation", nil, nil); err != nil {
		t.Fatalf("do() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestDoDecodeErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"code":`))
	}))

	var out map[string]any
	err := client.do(context.Background(), http.MethodPost, "/generation", nil, &out)
	if !errors.Is(err, core.ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestDoNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(Config{
		APIKey:     core.NewSecret("test-key"),
		BaseURL:    url,
		MaxRetries: -1,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = client.do(context.Background(), http.MethodPost, "/generation", nil, nil)
	if !errors.Is(err, core.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestDoContextCanceled(t *testing.T) {
	shortBackoff(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.do(ctx, http.MethodPost, "/generation", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDoStreamErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))

	resp, err := client.doStream(context.Background(), http.MethodPost, "/generation", nil)
	if resp != nil {
		t.Error("response should be nil on error")
	}
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestDoStreamSendsSSEHeaders(t *testing.T) {
	var gotAccept string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("data: [DONE]\n\n"))
	}))

	resp, err := client.doStream(context.Background(), http.MethodPost, "/generation", nil)
	if err != nil {
		t.Fatalf("doStream() error = %v", err)
	}
	resp.Body.Close()

	if gotAccept != "text/event-stream" {
		t.Errorf("Accept = %q, want text/event-stream", gotAccept)
	}
}
