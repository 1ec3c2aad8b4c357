package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes audio files through the OpenAI
// audio/transcriptions endpoint
type WhisperTranscriber struct {
	cli   *openai.Client
	model string
}

// NewWhisperTranscriber creates a transcriber; model defaults to whisper-1
func NewWhisperTranscriber(cli *openai.Client, model string) *WhisperTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{cli: cli, model: model}
}

// Transcribe uploads one audio file and returns its text
func (w *WhisperTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", upstreamError("whisper", err))
	}
	return strings.TrimSpace(resp.Text), nil
}
