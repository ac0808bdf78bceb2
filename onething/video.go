package onething

import (
	"context"
	"net/http"

	"github.com/onething-labs/onething-go/core"
)

// validateVideoRequest checks required fields and stamps the execution
// mode. Video jobs default to asynchronous execution and never stream:
// streaming is mutually exclusive with async job submissions, so the flag
// is cleared regardless of what the caller set.
func validateVideoRequest(req *core.VideoRequest) error {
	if req == nil {
		return &core.ValidationError{Field: "request", Message: "request is required"}
	}
	if err := validateModel(req.Model); err != nil {
		return err
	}
	if err := validatePrompt(req.Prompt); err != nil {
		return err
	}

	if req.SyncMode == "" {
		req.SyncMode = core.SyncModeAsync
	}
	if req.JobType == "" {
		req.JobType = core.VideoJobText2Video
	}
	req.Stream = nil
	return nil
}

// GenerateVideo submits a video request. Video jobs default to the
// text2video kind and asynchronous mode; the returned envelope carries the
// job ID to poll.
func (c *Client) GenerateVideo(ctx context.Context, req *core.VideoRequest) (*core.VideoEnvelope, error) {
	if err := validateVideoRequest(req); err != nil {
		return nil, err
	}
	return c.submitVideo(ctx, req)
}

// ImageToVideo submits an image-to-video request. The request's input
// images carry the source frames; the job kind is forced to image2video.
func (c *Client) ImageToVideo(ctx context.Context, req *core.VideoRequest) (*core.VideoEnvelope, error) {
	if err := validateVideoRequest(req); err != nil {
		return nil, err
	}
	req.JobType = core.VideoJobImage2Video
	return c.submitVideo(ctx, req)
}

// GenerateVideoAndWait submits a video request and polls the resulting job
// until it finishes. A synchronous terminal answer is returned directly.
func (c *Client) GenerateVideoAndWait(ctx context.Context, req *core.VideoRequest, opts *PollOptions) (*core.VideoEnvelope, error) {
	env, err := c.GenerateVideo(ctx, req)
	if err != nil {
		return nil, err
	}
	payload := &env.Data
	if payload.IsFailed() {
		return env, &core.JobError{JobID: payload.JobID, Payload: payload.Error}
	}
	if payload.IsCompleted() || payload.JobID == "" {
		return env, nil
	}
	return c.WaitForVideo(ctx, payload.JobID, opts)
}

func (c *Client) submitVideo(ctx context.Context, req *core.VideoRequest) (*core.VideoEnvelope, error) {
	var respMap map[string]any
	if err := c.do(ctx, http.MethodPost, generationPath, req, &respMap); err != nil {
		return nil, err
	}
	return core.DecodeVideoEnvelope(respMap)
}
