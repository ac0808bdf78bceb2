package onething

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/onething-labs/onething-go/core"
)

// PollOptions configure job polling.
type PollOptions struct {
	// MaxAttempts caps the number of status fetches; zero means unlimited.
	MaxAttempts int

	// Interval is the wait between fetches. Zero means the client's
	// PollInterval.
	Interval time.Duration

	// Timeout bounds the whole poll session; zero means no timeout.
	Timeout time.Duration

	// OnProgress is invoked with (progress, status) after every
	// successful fetch, terminal or not.
	OnProgress func(progress float64, status core.Status)
}

// DefaultPollOptions returns the default polling options: unlimited
// attempts, a 2 second interval, and a 5 minute timeout.
func DefaultPollOptions() *PollOptions {
	return &PollOptions{
		MaxAttempts: 0,
		Interval:    2 * time.Second,
		Timeout:     5 * time.Minute,
	}
}

// pollJob drives a job to a terminal state by repeated status fetches.
//
// The session has exactly five outcomes: success (envelope returned),
// job failure (JobError, envelope also returned for inspection), attempts
// exceeded, cancellation or timeout (context error), and only otherwise
// does it keep polling. Transient fetch errors are absorbed: the poller
// waits one interval and tries again, still counting the attempt.
func pollJob[R any](
	ctx context.Context,
	c *Client,
	jobID string,
	opts *PollOptions,
	fetch func(context.Context, string) (*core.Envelope[core.JobPayload[R]], error),
) (*core.Envelope[core.JobPayload[R]], error) {
	if opts == nil {
		opts = DefaultPollOptions()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = c.cfg.PollInterval
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	lastProgress := -1.0
	for fetches := 0; ; {
		if opts.MaxAttempts > 0 && fetches >= opts.MaxAttempts {
			return nil, fmt.Errorf("%w: job %s after %d attempts", core.ErrAttemptsExceeded, jobID, fetches)
		}

		env, err := fetch(ctx, jobID)
		fetches++
		if err != nil {
			if ctx.Err() != nil {
				return nil, pollInterrupted(jobID, ctx.Err())
			}
			// Transient fetch failure: wait and retry within budget.
			select {
			case <-ctx.Done():
				return nil, pollInterrupted(jobID, ctx.Err())
			case <-time.After(interval):
			}
			continue
		}

		payload := &env.Data
		if opts.OnProgress != nil {
			opts.OnProgress(payload.Progress, payload.Status)
		}
		c.cfg.Telemetry.OnPoll(core.Poll{
			JobID:     jobID,
			Attempt:   fetches,
			Progress:  payload.Progress,
			Status:    payload.Status,
			Regressed: payload.Progress < lastProgress,
		})
		lastProgress = payload.Progress

		if payload.IsCompleted() {
			return env, nil
		}
		if payload.IsFailed() {
			return env, &core.JobError{JobID: jobID, Payload: payload.Error}
		}

		select {
		case <-ctx.Done():
			return nil, pollInterrupted(jobID, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// pollInterrupted wraps a context error so cancellation and timeout stay
// distinguishable from attempts exhaustion and job failure.
func pollInterrupted(jobID string, err error) error {
	return fmt.Errorf("polling job %s: %w", jobID, err)
}

// jobStatusPath is the status lookup endpoint for a job.
func jobStatusPath(jobID string) string {
	return "/generation/job/" + url.PathEscape(jobID)
}

// jobStatus fetches the current envelope for a job.
func jobStatus[R any](
	ctx context.Context,
	c *Client,
	jobID string,
) (*core.Envelope[core.JobPayload[R]], error) {
	if jobID == "" {
		return nil, &core.ValidationError{Field: "job_id", Message: "job id is required"}
	}
	var respMap map[string]any
	if err := c.do(ctx, http.MethodGet, jobStatusPath(jobID), nil, &respMap); err != nil {
		return nil, err
	}
	return core.DecodeEnvelope[core.JobPayload[R]](respMap)
}

// ImageJobStatus retrieves the current status of an image job.
func (c *Client) ImageJobStatus(ctx context.Context, jobID string) (*core.ImageEnvelope, error) {
	return jobStatus[core.ImageResult](ctx, c, jobID)
}

// VideoJobStatus retrieves the current status of a video job.
func (c *Client) VideoJobStatus(ctx context.Context, jobID string) (*core.VideoEnvelope, error) {
	return jobStatus[core.VideoResult](ctx, c, jobID)
}

// WaitForImage polls an image job until it reaches a terminal state or the
// polling budget runs out.
func (c *Client) WaitForImage(ctx context.Context, jobID string, opts *PollOptions) (*core.ImageEnvelope, error) {
	return pollJob(ctx, c, jobID, opts, c.ImageJobStatus)
}

// WaitForVideo polls a video job until it reaches a terminal state or the
// polling budget runs out.
func (c *Client) WaitForVideo(ctx context.Context, jobID string, opts *PollOptions) (*core.VideoEnvelope, error) {
	return pollJob(ctx, c, jobID, opts, c.VideoJobStatus)
}
