package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// AssemblyAITranscriber transcribes audio files with the AssemblyAI SDK.
// The file is uploaded and the call blocks until the transcript is ready.
type AssemblyAITranscriber struct {
	client *aai.Client
	params *aai.TranscriptOptionalParams
}

// NewAssemblyAITranscriber creates a transcriber for the given API key.
// A non-empty baseURL overrides the public endpoint.
func NewAssemblyAITranscriber(apiKey, baseURL string) *AssemblyAITranscriber {
	opts := []aai.ClientOption{aai.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, aai.WithBaseURL(baseURL))
	}
	return &AssemblyAITranscriber{
		client: aai.NewClientWithOptions(opts...),
		params: &aai.TranscriptOptionalParams{
			SpeakerLabels: aai.Bool(true),
		},
	}
}

// Transcribe uploads one audio file and waits for its transcript
func (a *AssemblyAITranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, f, a.params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return "", fmt.Errorf("assemblyai transcription failed: %s", deref(transcript.Error))
	}
	return strings.TrimSpace(deref(transcript.Text)), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
