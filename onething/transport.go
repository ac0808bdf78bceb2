package onething

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/onething-labs/onething-go/core"
	"github.com/onething-labs/onething-go/internal/normalize"
)

// generationPath is the unified submission endpoint.
const generationPath = "/generation"

// retryBaseDelay is the unit of the linear backoff: the n-th retry waits
// n * retryBaseDelay.
var retryBaseDelay = time.Second

// do performs one logical request: serialize, send, classify, and retry
// transient failures up to the configured budget. On success the response
// body is JSON-decoded into out (which may be nil to discard it).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	requestID := uuid.NewString()
	start := time.Now()
	c.cfg.Telemetry.OnRequestStart(core.RequestStart{Method: method, Path: path, Start: start})

	var finalErr error
	var lastStatus int
	attempts := 0
	defer func() {
		c.cfg.Telemetry.OnRequestEnd(core.RequestEnd{
			Method:   method,
			Path:     path,
			Start:    start,
			End:      time.Now(),
			Status:   lastStatus,
			Attempts: attempts,
			Err:      finalErr,
		})
	}()

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff, cancellable.
			select {
			case <-ctx.Done():
				finalErr = ctx.Err()
				return finalErr
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}

		attempts++
		status, err := c.doOnce(ctx, method, path, body, out, requestID)
		if status != 0 {
			lastStatus = status
		}
		if err == nil {
			return nil
		}
		if !core.IsRetryable(err) {
			finalErr = err
			return finalErr
		}
		lastErr = err
	}

	finalErr = fmt.Errorf("max retries exceeded: %w", lastErr)
	return finalErr
}

// doOnce performs a single HTTP exchange. It returns the HTTP status when a
// response was received, zero otherwise.
func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, requestID string) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, normalize.DecodeError(fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return 0, normalize.NetworkError(err)
	}
	req.Header = c.buildHeaders(requestID, false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, normalize.NetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, normalize.NetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, normalize.APIError(resp.StatusCode, respBody, serverRequestID(resp, requestID))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, normalize.DecodeError(fmt.Errorf("unmarshal response: %w", err))
		}
	}

	return resp.StatusCode, nil
}

// doStream performs a streaming request and returns the open response body.
// Streaming requests are not retried; the caller owns closing the body,
// normally by handing it to an EventReader or ChunkReader.
func (c *Client) doStream(ctx context.Context, method, path string, body any) (*http.Response, error) {
	requestID := uuid.NewString()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, normalize.DecodeError(fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, normalize.NetworkError(err)
	}
	req.Header = c.buildHeaders(requestID, true)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, normalize.NetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, normalize.NetworkError(fmt.Errorf("read error response: %w", err))
		}
		return nil, normalize.APIError(resp.StatusCode, respBody, serverRequestID(resp, requestID))
	}

	return resp, nil
}

// serverRequestID prefers the correlation ID echoed by the server over the
// client-generated one.
func serverRequestID(resp *http.Response, fallback string) string {
	if id := resp.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return fallback
}
