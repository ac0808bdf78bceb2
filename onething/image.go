package onething

import (
	"context"
	"net/http"

	"github.com/onething-labs/onething-go/core"
)

// validateImageRequest checks required fields and stamps the execution mode
// onto the request. The façade, not the caller, decides sync mode and
// streaming.
func validateImageRequest(req *core.ImageRequest, stream *bool) error {
	if req == nil {
		return &core.ValidationError{Field: "request", Message: "request is required"}
	}
	if err := validateModel(req.Model); err != nil {
		return err
	}
	if err := validatePrompt(req.Prompt); err != nil {
		return err
	}

	req.SyncMode = core.SyncModeSync
	if req.JobType == "" {
		req.JobType = core.ImageJobGeneration
	}
	req.Stream = stream
	return nil
}

// GenerateImage submits a non-streaming image request. Image jobs default
// to the generation kind and synchronous mode.
func (c *Client) GenerateImage(ctx context.Context, req *core.ImageRequest) (*core.ImageEnvelope, error) {
	if err := validateImageRequest(req, nil); err != nil {
		return nil, err
	}
	return c.submitImage(ctx, req)
}

// EditImage submits an image edit. The request's input images carry the
// source material; the job kind is forced to edit.
func (c *Client) EditImage(ctx context.Context, req *core.ImageRequest) (*core.ImageEnvelope, error) {
	if err := validateImageRequest(req, nil); err != nil {
		return nil, err
	}
	req.JobType = core.ImageJobEdit
	return c.submitImage(ctx, req)
}

// GenerateImageStream submits an image request with streaming delivery and
// returns a reader over the partial-result events. The caller owns closing
// the reader.
func (c *Client) GenerateImageStream(ctx context.Context, req *core.ImageRequest) (*EventReader[core.ImageResult], error) {
	stream := true
	if err := validateImageRequest(req, &stream); err != nil {
		return nil, err
	}

	resp, err := c.doStream(ctx, http.MethodPost, generationPath, req)
	if err != nil {
		return nil, err
	}
	return newEventReader[core.ImageResult](ctx, resp.Body), nil
}

// GenerateImageAndWait submits an image request and, when the server chose
// to run it as a job, polls until it finishes. A synchronous terminal
// answer is returned directly.
func (c *Client) GenerateImageAndWait(ctx context.Context, req *core.ImageRequest, opts *PollOptions) (*core.ImageEnvelope, error) {
	env, err := c.GenerateImage(ctx, req)
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
	return c.WaitForImage(ctx, payload.JobID, opts)
}

func (c *Client) submitImage(ctx context.Context, req *core.ImageRequest) (*core.ImageEnvelope, error) {
	var respMap map[string]any
	if err := c.do(ctx, http.MethodPost, generationPath, req, &respMap); err != nil {
		return nil, err
	}
	return core.DecodeImageEnvelope(respMap)
}
