package onething

import (
	"context"
	"fmt"
	"net/http"

	"github.com/onething-labs/onething-go/core"
)

// validateTextRequest checks required fields and stamps the job kind and
// streaming flag. Text bodies are provider-defined, so only the model is
// required locally.
func validateTextRequest(req *core.TextRequest, jobType core.TextJobType, stream bool) error {
	if req == nil {
		return &core.ValidationError{Field: "request", Message: "request is required"}
	}
	if err := validateModel(req.Model); err != nil {
		return err
	}

	req.JobType = jobType
	if !req.JobType.Known() {
		return &core.ValidationError{Field: "job_type", Message: fmt.Sprintf("invalid job_type %q", req.JobType)}
	}

	if stream {
		t := true
		req.Stream = &t
	} else {
		req.Stream = nil
	}
	return nil
}

// GenerateText submits a non-streaming text request, defaulting the job
// kind to chat/completions when unset.
func (c *Client) GenerateText(ctx context.Context, req *core.TextRequest) (*core.TextEnvelope, error) {
	if req == nil {
		return nil, &core.ValidationError{Field: "request", Message: "request is required"}
	}
	jobType := req.JobType
	if jobType == "" {
		jobType = core.TextJobChatCompletions
	}
	if err := validateTextRequest(req, jobType, false); err != nil {
		return nil, err
	}
	return c.submitText(ctx, req)
}

// ChatCompletion performs a chat completion.
func (c *Client) ChatCompletion(ctx context.Context, req *core.TextRequest) (*core.TextEnvelope, error) {
	if err := validateTextRequest(req, core.TextJobChatCompletions, false); err != nil {
		return nil, err
	}
	return c.submitText(ctx, req)
}

// Completions performs a plain text completion.
func (c *Client) Completions(ctx context.Context, req *core.TextRequest) (*core.TextEnvelope, error) {
	if err := validateTextRequest(req, core.TextJobCompletions, false); err != nil {
		return nil, err
	}
	return c.submitText(ctx, req)
}

// Responses performs a responses-style text request.
func (c *Client) Responses(ctx context.Context, req *core.TextRequest) (*core.TextEnvelope, error) {
	if err := validateTextRequest(req, core.TextJobResponses, false); err != nil {
		return nil, err
	}
	return c.submitText(ctx, req)
}

// GenerateTextStream submits a streaming text request, defaulting the job
// kind to chat/completions when unset. The caller owns closing the reader.
func (c *Client) GenerateTextStream(ctx context.Context, req *core.TextRequest) (*ChunkReader, error) {
	if req == nil {
		return nil, &core.ValidationError{Field: "request", Message: "request is required"}
	}
	jobType := req.JobType
	if jobType == "" {
		jobType = core.TextJobChatCompletions
	}
	if err := validateTextRequest(req, jobType, true); err != nil {
		return nil, err
	}
	return c.submitTextStream(ctx, req)
}

// ChatCompletionStream performs a chat completion with streaming delivery.
func (c *Client) ChatCompletionStream(ctx context.Context, req *core.TextRequest) (*ChunkReader, error) {
	if err := validateTextRequest(req, core.TextJobChatCompletions, true); err != nil {
		return nil, err
	}
	return c.submitTextStream(ctx, req)
}

// CompletionsStream performs a plain text completion with streaming
// delivery.
func (c *Client) CompletionsStream(ctx context.Context, req *core.TextRequest) (*ChunkReader, error) {
	if err := validateTextRequest(req, core.TextJobCompletions, true); err != nil {
		return nil, err
	}
	return c.submitTextStream(ctx, req)
}

// ResponsesStream performs a responses-style request with streaming
// delivery.
func (c *Client) ResponsesStream(ctx context.Context, req *core.TextRequest) (*ChunkReader, error) {
	if err := validateTextRequest(req, core.TextJobResponses, true); err != nil {
		return nil, err
	}
	return c.submitTextStream(ctx, req)
}

func (c *Client) submitText(ctx context.Context, req *core.TextRequest) (*core.TextEnvelope, error) {
	var respMap map[string]any
	if err := c.do(ctx, http.MethodPost, generationPath, req, &respMap); err != nil {
		return nil, err
	}
	return core.DecodeTextEnvelope(respMap)
}

func (c *Client) submitTextStream(ctx context.Context, req *core.TextRequest) (*ChunkReader, error) {
	resp, err := c.doStream(ctx, http.MethodPost, generationPath, req)
	if err != nil {
		return nil, err
	}
	return newChunkReader(ctx, resp.Body), nil
}
