// Package report renders review results into deliverable documents and
// derives their filenames.
package report

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

// Report formats
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

const (
	filenameTimeLayout = "06-01-02_15-04"
	filenameSuffix     = "_Consultation_Summary"
	unknownProvider    = "Unknown"
	keySeparator       = " - "
	// failedMarker follows the entity key in reports of degraded runs, so
	// they never count as delivered
	failedMarker = "_FAILED"
)

var unsafeChars = regexp.MustCompile(`[^\w-]`)

// Data is everything a renderer may show
type Data struct {
	Identity    entities.RecordingIdentity
	Evaluation  entities.EvaluationResult
	Analysis    *entities.ConsultAnalysis
	Transcript  string
	GeneratedAt time.Time
}

// Provider returns the provider name shown in the report and filename:
// analysis provider, then host email local part, then "Unknown"
func (d Data) Provider() string {
	if d.Analysis != nil && strings.TrimSpace(d.Analysis.Provider) != "" {
		return strings.TrimSpace(d.Analysis.Provider)
	}
	if host := d.Identity.HostName(); host != "" {
		return host
	}
	return unknownProvider
}

// Patient returns the patient name when the analysis found one
func (d Data) Patient() string {
	if d.Analysis == nil {
		return ""
	}
	return strings.TrimSpace(d.Analysis.Patient)
}

// Degraded reports whether the model analysis failed
func (d Data) Degraded() bool {
	return d.Analysis != nil && d.Analysis.Degraded
}

// Renderer turns report data into a document
type Renderer interface {
	Render(data Data) (*entities.Report, error)
}

// NewRenderer returns the renderer for format. templatePath overrides the
// embedded Markdown template of the html format.
func NewRenderer(format, templatePath string, loc *time.Location) (Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch format {
	case FormatText, "":
		return &TextRenderer{loc: loc}, nil
	case FormatHTML:
		return NewHTMLRenderer(templatePath, loc)
	case FormatXLSX:
		return &XLSXRenderer{loc: loc}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// SanitizeName replaces every character outside [A-Za-z0-9_-] with "_"
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(strings.TrimSpace(name), "_")
}

// EntityKey is the form of an entity id embedded in report filenames. It
// starts its own name term so stores can search for it by prefix.
func EntityKey(entityID string) string {
	return SanitizeName(entityID)
}

// Filename derives the report name:
// "{yy-mm-dd_HH-MM} - {Provider}[_{Patient}]_Consultation_Summary - {entity}[_FAILED]{ext}"
func Filename(data Data, ext string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString(data.GeneratedAt.In(loc).Format(filenameTimeLayout))
	b.WriteString(keySeparator)
	b.WriteString(SanitizeName(data.Provider()))
	if patient := data.Patient(); patient != "" {
		b.WriteString("_")
		b.WriteString(SanitizeName(patient))
	}
	b.WriteString(filenameSuffix)
	if key := EntityKey(data.Identity.EntityID); key != "" {
		b.WriteString(keySeparator)
		b.WriteString(key)
	}
	if data.Degraded() {
		b.WriteString(failedMarker)
	}
	b.WriteString(ext)
	return b.String()
}

// Delivered reports whether one of names is a complete report for entityID.
// The key must be delimited on both sides, and failure reports are ignored.
func Delivered(names []string, entityID string) bool {
	key := EntityKey(entityID)
	if key == "" {
		return false
	}
	marker := keySeparator + key + "."
	for _, name := range names {
		if strings.Contains(path.Base(name), marker) {
			return true
		}
	}
	return false
}

func proceedLine(e entities.EvaluationResult) string {
	if e.Proceed {
		return "✅ Proceed: Yes"
	}
	return "❌ Proceed: No"
}

func durationLine(e entities.EvaluationResult) string {
	if e.DurationFlag {
		return "⚠️ Duration Flag: Under 20 minutes"
	}
	return ""
}

func behaviorLine(e entities.EvaluationResult) string {
	if e.BehaviorFlag {
		return "🚩 Behavior Flag: Tension detected"
	}
	return ""
}

func issuesLine(e entities.EvaluationResult) string {
	if len(e.Issues) == 0 {
		return "All checks passed."
	}
	return strings.Join(e.Issues, ", ")
}

func unansweredLine(e entities.EvaluationResult) string {
	if len(e.UnansweredQuestions) == 0 {
		return "None"
	}
	return strings.Join(e.UnansweredQuestions, "; ")
}
