package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/internal/usecase/evaluation"
)

var generatedAt = time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)

func sampleData() Data {
	text := "Provider: What is your goal?\nPatient: Do I take it daily?\nProvider: angry words"
	return Data{
		Identity: entities.RecordingIdentity{
			EntityID:  "abc/123==",
			Kind:      entities.EntityKindMeeting,
			Topic:     "Follow-up",
			HostEmail: "dr.roe@example.com",
			StartTime: generatedAt.Add(-time.Hour),
		},
		Evaluation:  evaluation.Evaluate(text),
		Transcript:  text,
		GeneratedAt: generatedAt,
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Dr. Jane Roe", "Dr__Jane_Roe"},
		{"O'Neil-Smith", "O_Neil-Smith"},
		{" plain_name ", "plain_name"},
		{"abc/123==", "abc_123__"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	data := sampleData()

	got := Filename(data, ".txt", time.UTC)
	want := "25-03-07_14-05 - dr_roe_Consultation_Summary - abc_123__.txt"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}

	data.Analysis = &entities.ConsultAnalysis{Provider: "Dr. Jane Roe", Patient: "John Doe"}
	got = Filename(data, ".html", time.UTC)
	want = "25-03-07_14-05 - Dr__Jane_Roe_John_Doe_Consultation_Summary - abc_123__.html"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}

	if !strings.Contains(got, EntityKey(data.Identity.EntityID)) {
		t.Fatalf("filename must contain the entity key")
	}
}

func TestFilename_DegradedCarriesFailedMarker(t *testing.T) {
	data := sampleData()
	data.Analysis = entities.NewDegradedAnalysis(errors.New("openai returned status 401"))

	got := Filename(data, ".txt", time.UTC)
	want := "25-03-07_14-05 - dr_roe_Consultation_Summary - abc_123___FAILED.txt"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
	if Delivered([]string{got}, data.Identity.EntityID) {
		t.Fatalf("a failure report must not count as delivered")
	}
}

func TestDelivered(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		entityID string
		want     bool
	}{
		{"exact key", []string{"25-03-07_14-05 - X_Consultation_Summary - 123.txt"}, "123", true},
		{"object path", []string{"reports/25-03-07_14-05 - X_Consultation_Summary - 123.xlsx"}, "123", true},
		{"longer id containing key", []string{"25-03-07_14-05 - X_Consultation_Summary - 41234.txt"}, "123", false},
		{"key prefix of longer id", []string{"25-03-07_14-05 - X_Consultation_Summary - 1234.txt"}, "123", false},
		{"failure report", []string{"25-03-07_14-05 - X_Consultation_Summary - 123_FAILED.txt"}, "123", false},
		{"sanitized uuid", []string{"25-03-07_14-05 - X_Consultation_Summary - abc_123__.html"}, "abc/123==", true},
		{"empty id", []string{"25-03-07_14-05 - X_Consultation_Summary - .txt"}, "", false},
		{"no names", nil, "123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Delivered(tt.names, tt.entityID); got != tt.want {
				t.Fatalf("Delivered(%v, %q) = %v, want %v", tt.names, tt.entityID, got, tt.want)
			}
		})
	}
}

func TestFilename_UnknownProviderAndTimezone(t *testing.T) {
	data := sampleData()
	data.Identity.HostEmail = ""

	loc := time.FixedZone("EST", -5*3600)
	got := Filename(data, ".txt", loc)
	if !strings.HasPrefix(got, "25-03-07_09-05 - Unknown_Consultation_Summary") {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestTextRenderer(t *testing.T) {
	r, err := NewRenderer(FormatText, "", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := sampleData()
	data.Analysis = &entities.ConsultAnalysis{Raw: "Provider: Dr. Roe\nScore: 6"}

	rep, err := r.Render(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(rep.Body)

	if rep.MimeType != entities.MimeTypeText || !strings.HasSuffix(rep.Filename, ".txt") {
		t.Fatalf("unexpected report meta %+v", rep)
	}
	sep := strings.Index(body, "\n\n---\n\n")
	if sep < 0 || !strings.HasPrefix(body, data.Transcript) {
		t.Fatalf("transcript must come first, followed by a separator:\n%s", body)
	}
	for _, want := range []string{
		"❌ Proceed: No",
		"⚠️ Duration Flag: Under 20 minutes",
		"🚩 Behavior Flag: Tension detected",
		"Score: 6",
		"Do I take it daily?",
		"No ancillary meds",
	} {
		if !strings.Contains(body[sep:], want) {
			t.Fatalf("report missing %q:\n%s", want, body)
		}
	}
}

func TestHTMLRenderer(t *testing.T) {
	r, err := NewRenderer(FormatHTML, "", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := sampleData()
	data.Analysis = &entities.ConsultAnalysis{
		Provider: "Dr. Roe",
		Score:    7,
		Summary:  "Routine follow-up.",
		Sections: []string{"Introduced", "Confirmed DOB"},
	}

	rep, err := r.Render(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(rep.Body)
	for _, want := range []string{
		"<h1>Consultation Review: Dr. Roe</h1>",
		"<table>",
		"Routine follow-up.",
		"<strong>Introduction of Provider</strong>",
		"No ancillary meds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("html missing %q:\n%s", want, body)
		}
	}
	if rep.MimeType != entities.MimeTypeHTML {
		t.Fatalf("unexpected mime type %s", rep.MimeType)
	}
}

func TestHTMLRenderer_DegradedAnalysis(t *testing.T) {
	r, err := NewHTMLRenderer("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := sampleData()
	data.Analysis = entities.NewDegradedAnalysis(os.ErrDeadlineExceeded)

	rep, err := r.Render(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(rep.Body), "GPT Error") {
		t.Fatalf("degraded report should carry the error text:\n%s", rep.Body)
	}
}

func TestHTMLRenderer_TemplateOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.md.tmpl")
	if err := os.WriteFile(path, []byte("# Custom {{ .Provider }}\n"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	r, err := NewHTMLRenderer(path, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rep, err := r.Render(sampleData())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(rep.Body), "<h1>Custom dr.roe</h1>") {
		t.Fatalf("override template not used:\n%s", rep.Body)
	}
}

func TestXLSXRenderer(t *testing.T) {
	r, err := NewRenderer(FormatXLSX, "", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := sampleData()
	data.Analysis = &entities.ConsultAnalysis{
		Provider: "Dr. Roe",
		Summary:  "ok",
		Sections: []string{"a", "b"},
	}

	rep, err := r.Render(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.MimeType != entities.MimeTypeXLSX || !strings.HasSuffix(rep.Filename, ".xlsx") {
		t.Fatalf("unexpected report meta %+v", rep)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rep.Body))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(SheetReview, "B2"); v != "Dr. Roe" {
		t.Fatalf("unexpected provider cell %q", v)
	}
	if v, _ := f.GetCellValue(SheetSections, "A2"); v != "1. Introduction of Provider" {
		t.Fatalf("unexpected section title %q", v)
	}
}

func TestNewRenderer_UnknownFormat(t *testing.T) {
	if _, err := NewRenderer("pdf", "", time.UTC); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
