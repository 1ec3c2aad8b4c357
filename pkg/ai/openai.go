package ai

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/consult-review/pkg/config"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
)

// NewOpenAIClient creates a client for any OpenAI-compatible endpoint.
// An empty BaseURL keeps the public OpenAI API.
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// upstreamError attaches the HTTP status of a failed API call so callers can
// decide whether it is worth retrying
func upstreamError(service string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return jobcontext.NewStatusError(service, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return jobcontext.NewStatusError(service, reqErr.HTTPStatusCode, err)
	}
	return err
}
