package core

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps every API payload with the common response fields.
type Envelope[T any] struct {
	Code      int    `json:"code"`
	Data      T      `json:"data"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// ResultSet is the list of generated outputs carried by a successful job.
type ResultSet[R any] struct {
	Data []R `json:"data"`
}

// JobPayload is the envelope data for asynchronous operations (image and
// video). Result is present only when Status is success; Error only when
// Status is failed. Progress is in [0.0, 1.0] and is non-decreasing across
// polls of the same job by server guarantee; the client does not enforce it.
type JobPayload[R any] struct {
	JobID    string        `json:"job_id"`
	Status   Status        `json:"status"`
	Progress float64       `json:"progress"`
	Created  int64         `json:"created"`
	Result   *ResultSet[R] `json:"result,omitempty"`
	Error    any           `json:"error,omitempty"`
}

// IsCompleted reports whether the job finished successfully.
func (p *JobPayload[R]) IsCompleted() bool {
	return p.Status == StatusSuccess
}

// IsFailed reports whether the job reached the failed terminal state.
func (p *JobPayload[R]) IsFailed() bool {
	return p.Status == StatusFailed
}

// IsProcessing reports whether the job is still running.
func (p *JobPayload[R]) IsProcessing() bool {
	return p.Status == StatusProcessing
}

// ImageResult is a single generated image.
type ImageResult struct {
	Index    int            `json:"index"`
	URL      *string        `json:"url,omitempty"`
	B64JSON  *string        `json:"b64_json,omitempty"` // includes a data URL prefix
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetURL returns the image URL, or an empty string.
func (r *ImageResult) GetURL() string {
	if r.URL != nil {
		return *r.URL
	}
	return ""
}

// GetB64JSON returns the base64 image data, or an empty string.
func (r *ImageResult) GetB64JSON() string {
	if r.B64JSON != nil {
		return *r.B64JSON
	}
	return ""
}

// VideoResult is a single generated video.
type VideoResult struct {
	Index    int            `json:"index"`
	URL      *string        `json:"url,omitempty"`
	Duration *int           `json:"duration,omitempty"` // seconds
	FPS      *int           `json:"fps,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GetURL returns the video URL, or an empty string.
func (r *VideoResult) GetURL() string {
	if r.URL != nil {
		return *r.URL
	}
	return ""
}

// GetDuration returns the video duration in seconds, or zero.
func (r *VideoResult) GetDuration() int {
	if r.Duration != nil {
		return *r.Duration
	}
	return 0
}

// GetFPS returns the video frame rate, or zero.
func (r *VideoResult) GetFPS() int {
	if r.FPS != nil {
		return *r.FPS
	}
	return 0
}

// ImagePayload is the async payload for image jobs.
type ImagePayload = JobPayload[ImageResult]

// VideoPayload is the async payload for video jobs.
type VideoPayload = JobPayload[VideoResult]

// TextPayload is the free-form payload for text operations; its shape is
// defined by the upstream provider.
type TextPayload = map[string]any

// ImageEnvelope is the full response for image operations.
type ImageEnvelope = Envelope[ImagePayload]

// VideoEnvelope is the full response for video operations.
type VideoEnvelope = Envelope[VideoPayload]

// TextEnvelope is the full response for text operations.
type TextEnvelope = Envelope[TextPayload]

// DecodeEnvelope decodes a raw API response into a typed envelope. The
// source may be a generic key-value map or raw JSON bytes; any other type is
// a decode error.
func DecodeEnvelope[T any](v any) (*Envelope[T], error) {
	switch src := v.(type) {
	case map[string]any:
		raw, err := json.Marshal(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return decodeEnvelopeBytes[T](raw)
	case []byte:
		return decodeEnvelopeBytes[T](src)
	case json.RawMessage:
		return decodeEnvelopeBytes[T](src)
	default:
		return nil, fmt.Errorf("%w: unsupported envelope source %T", ErrDecode, v)
	}
}

func decodeEnvelopeBytes[T any](raw []byte) (*Envelope[T], error) {
	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &env, nil
}

// DecodeImageEnvelope decodes a raw response into an image envelope.
func DecodeImageEnvelope(v any) (*ImageEnvelope, error) {
	return DecodeEnvelope[ImagePayload](v)
}

// DecodeVideoEnvelope decodes a raw response into a video envelope.
func DecodeVideoEnvelope(v any) (*VideoEnvelope, error) {
	return DecodeEnvelope[VideoPayload](v)
}

// DecodeTextEnvelope decodes a raw response into a text envelope.
func DecodeTextEnvelope(v any) (*TextEnvelope, error) {
	return DecodeEnvelope[TextPayload](v)
}
