package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SyncMode selects synchronous or asynchronous execution for a submission.
type SyncMode string

const (
	SyncModeSync  SyncMode = "sync"
	SyncModeAsync SyncMode = "async"
)

// ImageJobType identifies the kind of image job.
type ImageJobType string

const (
	ImageJobGeneration ImageJobType = "generation"
	ImageJobEdit       ImageJobType = "edit"
	ImageJobVariation  ImageJobType = "variation"
)

// VideoJobType identifies the kind of video job.
type VideoJobType string

const (
	VideoJobText2Video  VideoJobType = "text2video"
	VideoJobImage2Video VideoJobType = "image2video"
)

// TextJobType identifies the upstream text endpoint shape.
type TextJobType string

const (
	TextJobChatCompletions TextJobType = "chat/completions"
	TextJobCompletions     TextJobType = "completions"
	TextJobResponses       TextJobType = "responses"
)

// Known reports whether the text job type is one of the documented values.
func (t TextJobType) Known() bool {
	switch t {
	case TextJobChatCompletions, TextJobCompletions, TextJobResponses:
		return true
	default:
		return false
	}
}

// ResponseFormat selects how generated media is returned.
type ResponseFormat string

const (
	ResponseFormatURL     ResponseFormat = "url"
	ResponseFormatB64JSON ResponseFormat = "b64_json"
)

// ImageStyle selects a rendering style for image generation.
type ImageStyle string

const (
	ImageStyleVivid   ImageStyle = "vivid"
	ImageStyleNatural ImageStyle = "natural"
)

// InputImage is a reference image supplied with a request, by URL or as
// base64-encoded data. A single entry sets one of the two fields; a list may
// mix both forms.
type InputImage struct {
	URL     *string `json:"url,omitempty"`
	B64JSON *string `json:"b64_json,omitempty"`
}

// InputVideo is a reference video supplied with a request.
type InputVideo struct {
	URL *string `json:"url,omitempty"`
}

// ImageOutputConfig shapes generated images.
type ImageOutputConfig struct {
	Height         *int            `json:"height,omitempty"`
	Width          *int            `json:"width,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// VideoOutputConfig shapes generated videos.
type VideoOutputConfig struct {
	Height   *int `json:"height,omitempty"`
	Width    *int `json:"width,omitempty"`
	Duration *int `json:"duration,omitempty"` // seconds
	FPS      *int `json:"fps,omitempty"`
}

// ImageExtra carries optional free-form image parameters.
type ImageExtra struct {
	Seed  *int        `json:"seed,omitempty"`
	Style *ImageStyle `json:"style,omitempty"`
}

// VideoExtra carries optional free-form video parameters.
type VideoExtra struct {
	Seed           *int   `json:"seed,omitempty"`
	AudioEnabled   bool   `json:"audio_enabled"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

// Parameters groups input media references and the output configuration.
type Parameters[O any] struct {
	InputImages  []InputImage `json:"input_images,omitempty"`
	InputVideos  []InputVideo `json:"input_videos,omitempty"`
	OutputConfig *O           `json:"output_config,omitempty"`
}

// GenerateRequest is the unified submission shape, parameterized over the
// output config, job type, and extra parameters of the operation kind.
//
// SyncMode and Stream are adjusted by the operation façades; callers should
// not set them directly. Streaming is never combined with asynchronous video
// submissions.
type GenerateRequest[O any, J ~string, X any] struct {
	Model      string         `json:"model"`
	JobType    J              `json:"job_type"`
	SyncMode   SyncMode       `json:"sync_mode"`
	Stream     *bool          `json:"stream,omitempty"`
	Prompt     string         `json:"prompt"`
	N          *int           `json:"n,omitempty"`
	Parameters *Parameters[O] `json:"parameters,omitempty"`
	Extra      *X             `json:"extra,omitempty"`
}

// ImageRequest is the submission shape for image jobs.
type ImageRequest = GenerateRequest[ImageOutputConfig, ImageJobType, ImageExtra]

// VideoRequest is the submission shape for video jobs.
type VideoRequest = GenerateRequest[VideoOutputConfig, VideoJobType, VideoExtra]

// TextRequest is the submission shape for text jobs. The upstream text
// endpoints accept provider-defined bodies (messages, sampling parameters,
// and so on), so everything beyond the typed fields travels in Body and is
// marshaled inline at the top level. Typed fields win over Body entries of
// the same name.
type TextRequest struct {
	Model   string
	JobType TextJobType
	Stream  *bool
	Body    map[string]any
}

// MarshalJSON flattens Body into the top-level object alongside the typed
// fields.
func (r *TextRequest) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Body)+3)
	for k, v := range r.Body {
		m[k] = v
	}
	m["model"] = r.Model
	if r.JobType != "" {
		m["job_type"] = string(r.JobType)
	} else {
		delete(m, "job_type")
	}
	if r.Stream != nil {
		m["stream"] = *r.Stream
	} else {
		delete(m, "stream")
	}
	return json.Marshal(m)
}

// ImageRequestFromMap converts a raw key-value request into the typed model.
// It is the single entry point for callers holding loosely-typed payloads;
// unknown keys are rejected rather than dropped.
func ImageRequestFromMap(m map[string]any) (*ImageRequest, error) {
	return requestFromMap[ImageOutputConfig, ImageJobType, ImageExtra](m)
}

// VideoRequestFromMap converts a raw key-value request into the typed model.
// Unknown keys are rejected rather than dropped.
func VideoRequestFromMap(m map[string]any) (*VideoRequest, error) {
	return requestFromMap[VideoOutputConfig, VideoJobType, VideoExtra](m)
}

func requestFromMap[O any, J ~string, X any](m map[string]any) (*GenerateRequest[O, J, X], error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil request map", ErrDecode)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var req GenerateRequest[O, J, X]
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &req, nil
}

// TextRequestFromMap converts a raw key-value request into a TextRequest,
// lifting model, job_type, and stream into the typed fields and keeping the
// remainder as the free-form body.
func TextRequestFromMap(m map[string]any) (*TextRequest, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil request map", ErrDecode)
	}
	req := &TextRequest{Body: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "model":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: model must be a string, got %T", ErrDecode, v)
			}
			req.Model = s
		case "job_type":
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: job_type must be a string, got %T", ErrDecode, v)
			}
			req.JobType = TextJobType(s)
		case "stream":
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: stream must be a bool, got %T", ErrDecode, v)
			}
			req.Stream = &b
		default:
			req.Body[k] = v
		}
	}
	return req, nil
}
