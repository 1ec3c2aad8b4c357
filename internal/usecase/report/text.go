package report

import (
	"strings"
	"time"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
)

// TextRenderer writes the plain text report: the transcript, a separator,
// then the decision, flags, summary, unanswered questions and evaluation
type TextRenderer struct {
	loc *time.Location
}

// Render implements Renderer
func (r *TextRenderer) Render(data Data) (*entities.Report, error) {
	e := data.Evaluation
	var b strings.Builder

	b.WriteString(data.Transcript)
	b.WriteString("\n\n---\n\n")

	b.WriteString(proceedLine(e) + "\n")
	if line := durationLine(e); line != "" {
		b.WriteString(line + "\n")
	}
	if line := behaviorLine(e); line != "" {
		b.WriteString(line + "\n")
	}

	if data.Analysis != nil {
		b.WriteString("\n🧠 Consultation Review:\n")
		b.WriteString(data.Analysis.Text())
		b.WriteString("\n")
	}

	b.WriteString("\n📋 Summary:\n")
	b.WriteString(e.SummaryText)
	b.WriteString("...\n")

	b.WriteString("\n❓ Unanswered:\n")
	b.WriteString(unansweredLine(e) + "\n")

	b.WriteString("\n🔍 Evaluation:\n")
	b.WriteString(issuesLine(e) + "\n")

	return &entities.Report{
		Filename: Filename(data, ".txt", r.loc),
		Body:     []byte(b.String()),
		MimeType: entities.MimeTypeText,
	}, nil
}
