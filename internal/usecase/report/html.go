package report

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/internal/usecase/ai"
)

//go:embed templates/report.md.tmpl
var templates embed.FS

const defaultTemplate = "templates/report.md.tmpl"

// HTMLRenderer fills a Markdown template and converts it to HTML
type HTMLRenderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
	loc  *time.Location
}

// NewHTMLRenderer parses the template at path, or the embedded one when
// path is empty
func NewHTMLRenderer(path string, loc *time.Location) (*HTMLRenderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	var (
		src []byte
		err error
	)
	if path != "" {
		src, err = os.ReadFile(path)
	} else {
		src, err = templates.ReadFile(defaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("read report template: %w", err)
	}

	funcs := template.FuncMap{
		"proceed":  proceedLine,
		"duration": durationLine,
		"behavior": behaviorLine,
		"inc":      func(i int) int { return i + 1 },
		"section": func(i int) string {
			if i < len(ai.FrameworkSections) {
				return ai.FrameworkSections[i]
			}
			return fmt.Sprintf("Section %d", i+1)
		},
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return "unknown"
			}
			return t.In(loc).Format("2006-01-02 15:04 MST")
		},
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &HTMLRenderer{
		tmpl: tmpl,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		loc:  loc,
	}, nil
}

// Render implements Renderer
func (r *HTMLRenderer) Render(data Data) (*entities.Report, error) {
	var md bytes.Buffer
	if err := r.tmpl.Execute(&md, data); err != nil {
		return nil, fmt.Errorf("execute report template: %w", err)
	}

	var body bytes.Buffer
	body.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Consultation Review</title></head><body>\n")
	if err := r.md.Convert(md.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	body.WriteString("</body></html>\n")

	return &entities.Report{
		Filename: Filename(data, ".html", r.loc),
		Body:     body.Bytes(),
		MimeType: entities.MimeTypeHTML,
	}, nil
}
