package ai

import (
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":1}\nThanks", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Fatalf("ExtractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	p := NewParser()
	reply := "```json\n" + `{
  "provider": "Dr. Jane Roe",
  "patient": "John Doe",
  "score": "8/10",
  "consult_duration": 25,
  "summary": "Routine follow-up.",
  "sections": ["Introduced herself", "", "Texas"],
  "anomalies": null
}` + "\n```"

	got, err := p.ParseAnalysis(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Provider != "Dr. Jane Roe" || got.Patient != "John Doe" {
		t.Fatalf("unexpected names %q %q", got.Provider, got.Patient)
	}
	if got.Score != 8 {
		t.Fatalf("expected score 8, got %v", got.Score)
	}
	if got.ConsultDuration != "25" {
		t.Fatalf("expected duration 25, got %q", got.ConsultDuration)
	}
	if len(got.Sections) != 15 {
		t.Fatalf("expected 15 sections, got %d", len(got.Sections))
	}
	if got.Sections[0] != "Introduced herself" || got.Sections[1] != NotAddressed || got.Sections[14] != NotAddressed {
		t.Fatalf("unexpected sections %v", got.Sections)
	}
	if got.Anomalies != "" {
		t.Fatalf("expected empty anomalies, got %q", got.Anomalies)
	}
	if !got.Structured() {
		t.Fatalf("expected structured analysis")
	}
}

func TestParseAnalysis_Invalid(t *testing.T) {
	p := NewParser()
	if _, err := p.ParseAnalysis("Provider: Dr. Roe\nScore: 7"); err == nil {
		t.Fatalf("expected error for free-form text")
	}
	if _, err := p.ParseAnalysis(`{"provider":"x"}`); err == nil {
		t.Fatalf("expected error when summary and sections are missing")
	}
}

func TestExtractProvider(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Provider: Dr. Smith\nScore: 8", "Dr. Smith"},
		{"**Provider:** [Dr. Adams]", "Dr. Adams"},
		{"Provider:   Jane Roe  ", "Jane Roe"},
		{"No label here", ""},
	}

	for _, tt := range tests {
		if got := ExtractProvider(tt.in); got != tt.want {
			t.Fatalf("ExtractProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanTranscript(t *testing.T) {
	vtt := "WEBVTT\r\n\r\n1\r\n00:00:01.000 --> 00:00:03.000\r\nProvider: Hello there.\r\n\r\n2\r\n00:00:04.000 --> 00:00:06.000\r\nPatient: Hi, what is the goal?\r\n"

	got := CleanTranscript(vtt)
	want := "Provider: Hello there. Patient: Hi, what is the goal?"
	if got != want {
		t.Fatalf("CleanTranscript = %q, want %q", got, want)
	}
	if strings.Contains(got, "-->") {
		t.Fatalf("timing cues must be removed")
	}
}
