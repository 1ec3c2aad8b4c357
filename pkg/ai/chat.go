package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient runs single-turn chat completions for transcript analysis
type ChatClient struct {
	cli         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewChatClient creates a chat client bound to one model
func NewChatClient(cli *openai.Client, model string, temperature float32, maxTokens int) *ChatClient {
	if model == "" {
		model = openai.GPT4o
	}
	return &ChatClient{
		cli:         cli,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Complete sends the system instruction and the user content and returns the
// assistant reply. jsonMode asks the model for a single JSON object.
func (c *ChatClient) Complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", upstreamError("chat", err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from chat model")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
