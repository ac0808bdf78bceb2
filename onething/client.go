package onething

import (
	"errors"
	"net/http"
	"os"

	"github.com/onething-labs/onething-go/core"
)

// ErrAPIKeyNotFound is returned by NewFromEnv when the API key environment
// variable is not set.
var ErrAPIKeyNotFound = errors.New("onething: ONETHING_API_KEY environment variable not set")

// Client talks to the OneThing generation API.
// Client is safe for concurrent use; its configuration is read-only after New.
type Client struct {
	cfg        Config
	httpClient *http.Client
	// streamClient carries no overall timeout: an SSE stream legitimately
	// outlives any single-request deadline. Cancellation comes from the
	// caller's context.
	streamClient *http.Client
}

// New creates a Client from an explicit configuration. Zero-valued fields
// take the defaults documented on Config; APIKey is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey.IsEmpty() {
		return nil, &core.ValidationError{Field: "api_key", Message: "api key is required"}
	}
	cfg = cfg.withDefaults()

	httpClient := cfg.HTTPClient
	streamClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
		streamClient = &http.Client{}
	}

	return &Client{cfg: cfg, httpClient: httpClient, streamClient: streamClient}, nil
}

// NewFromEnv creates a Client from ONETHING_API_KEY, with an optional
// ONETHING_BASE_URL override:
//
//	client, err := onething.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(Config{
		APIKey:  core.NewSecret(apiKey),
		BaseURL: os.Getenv(EnvBaseURL),
	})
}

// Config returns a copy of the resolved client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// buildHeaders constructs the headers for an API request. Streaming
// requests additionally declare the SSE accept headers.
func (c *Client) buildHeaders(requestID string, stream bool) http.Header {
	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+c.cfg.APIKey.Expose())
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", c.cfg.UserAgent)
	headers.Set("X-Request-ID", requestID)

	if stream {
		headers.Set("Accept", "text/event-stream")
		headers.Set("Cache-Control", "no-cache")
		headers.Set("Connection", "keep-alive")
	}

	for key, value := range c.cfg.Headers {
		headers.Set(key, value)
	}

	return headers
}

// validateModel checks the required model field.
func validateModel(model string) error {
	if model == "" {
		return &core.ValidationError{Field: "model", Message: "model is required"}
	}
	return nil
}

// maxPromptLen bounds prompt length; longer prompts are rejected upstream
// anyway, catching them locally saves the round trip.
const maxPromptLen = 10000

// validatePrompt checks the required prompt field.
func validatePrompt(prompt string) error {
	if prompt == "" {
		return &core.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	if len(prompt) > maxPromptLen {
		return &core.ValidationError{Field: "prompt", Message: "prompt is too long (max 10000 characters)"}
	}
	return nil
}
