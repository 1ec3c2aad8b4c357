package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
)

var testRetry = jobcontext.RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	MaxElapsedTime:  500 * time.Millisecond,
}

type fakeTranscriber struct {
	texts map[string]string
	calls []string
	fail  map[string]error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.calls = append(f.calls, path)
	if err := f.fail[path]; err != nil {
		return "", err
	}
	return f.texts[path], nil
}

type fakeChat struct {
	reply    string
	err      error
	calls    int
	jsonMode bool
}

func (f *fakeChat) Complete(_ context.Context, _, _ string, jsonMode bool) (string, error) {
	f.calls++
	f.jsonMode = jsonMode
	return f.reply, f.err
}

func TestTranscribe_PreservesSegmentOrder(t *testing.T) {
	tr := &fakeTranscriber{texts: map[string]string{
		"seg_00000.m4a": "S1 alpha",
		"seg_00001.m4a": "S2 bravo",
		"seg_00002.m4a": "S3 charlie",
	}}
	svc := NewService(tr, nil, Options{Retry: testRetry}, nil)

	segments := []entities.TranscriptSegment{
		{Index: 0, Path: "seg_00000.m4a"},
		{Index: 1, Path: "seg_00001.m4a"},
		{Index: 2, Path: "seg_00002.m4a"},
	}
	text, err := svc.Transcribe(context.Background(), segments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "S1 alpha\nS2 bravo\nS3 charlie" {
		t.Fatalf("unexpected transcript %q", text)
	}
	i1, i2, i3 := strings.Index(text, "S1"), strings.Index(text, "S2"), strings.Index(text, "S3")
	if !(i1 < i2 && i2 < i3) {
		t.Fatalf("segments out of order: %q", text)
	}
	if segments[1].Text != "S2 bravo" {
		t.Fatalf("segment text not recorded: %+v", segments[1])
	}
	if len(tr.calls) != 3 || tr.calls[0] != "seg_00000.m4a" {
		t.Fatalf("unexpected call order %v", tr.calls)
	}
}

func TestTranscribe_FailsWholeRun(t *testing.T) {
	tr := &fakeTranscriber{
		texts: map[string]string{"a": "one"},
		fail:  map[string]error{"b": jobcontext.NewStatusError("whisper", http.StatusBadRequest, nil)},
	}
	svc := NewService(tr, nil, Options{Retry: testRetry}, nil)

	_, err := svc.Transcribe(context.Background(), []entities.TranscriptSegment{
		{Index: 0, Path: "a"}, {Index: 1, Path: "b"}, {Index: 2, Path: "c"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(tr.calls) != 2 {
		t.Fatalf("processing should stop at the failing segment, calls=%v", tr.calls)
	}
}

func TestAnalyze_Disabled(t *testing.T) {
	svc := NewService(nil, nil, Options{}, nil)
	if svc.Enabled() || svc.Analyze(context.Background(), "text") != nil {
		t.Fatalf("analysis should be disabled without a chat client")
	}
}

func TestAnalyze_JSONMode(t *testing.T) {
	chat := &fakeChat{reply: `{"provider":"Dr. Roe","summary":"ok","sections":["a"],"score":7}`}
	svc := NewService(nil, chat, Options{Mode: ModeJSON, Retry: testRetry}, nil)

	got := svc.Analyze(context.Background(), "transcript")
	if !chat.jsonMode {
		t.Fatalf("expected json mode request")
	}
	if got.Degraded || got.Provider != "Dr. Roe" || got.Score != 7 {
		t.Fatalf("unexpected analysis %+v", got)
	}
}

func TestAnalyze_JSONModeFallsBackToText(t *testing.T) {
	chat := &fakeChat{reply: "Provider: Dr. Adams\nScore: 6\nSummary by Section: ..."}
	svc := NewService(nil, chat, Options{Mode: ModeJSON, Retry: testRetry}, nil)

	got := svc.Analyze(context.Background(), "transcript")
	if got.Degraded || got.Structured() {
		t.Fatalf("expected free-form analysis, got %+v", got)
	}
	if got.Provider != "Dr. Adams" || got.Text() != chat.reply {
		t.Fatalf("unexpected analysis %+v", got)
	}
}

func TestAnalyze_DegradedOnFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("invalid api key")}
	svc := NewService(nil, chat, Options{Mode: ModeText, Retry: testRetry}, nil)

	got := svc.Analyze(context.Background(), "transcript")
	if got == nil || !got.Degraded {
		t.Fatalf("expected degraded analysis, got %+v", got)
	}
	if !strings.Contains(got.Text(), "invalid api key") {
		t.Fatalf("degraded text should explain the error: %q", got.Text())
	}
	if chat.calls != 1 {
		t.Fatalf("non-retryable errors must not be retried, calls=%d", chat.calls)
	}
}

func TestAnalyze_RetriesTransientFailure(t *testing.T) {
	chat := &fakeChat{err: jobcontext.NewStatusError("chat", http.StatusTooManyRequests, nil)}
	svc := NewService(nil, chat, Options{Mode: ModeText, Retry: testRetry}, nil)

	got := svc.Analyze(context.Background(), "transcript")
	if !got.Degraded {
		t.Fatalf("expected degraded analysis after retries")
	}
	if chat.calls < 2 {
		t.Fatalf("expected retries on 429, calls=%d", chat.calls)
	}
}
