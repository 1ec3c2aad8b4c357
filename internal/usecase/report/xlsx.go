package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/internal/usecase/ai"
)

// Sheet names of the workbook report
const (
	SheetReview   = "Review"
	SheetSections = "Framework"
)

// XLSXRenderer writes the review as a workbook: one key/value sheet and one
// sheet with the framework sections
type XLSXRenderer struct {
	loc *time.Location
}

// Render implements Renderer
func (r *XLSXRenderer) Render(data Data) (*entities.Report, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReview); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	e := data.Evaluation
	rows := [][2]any{
		{"Provider", data.Provider()},
		{"Patient", data.Patient()},
		{"Recording", data.Identity.EntityID},
		{"Topic", data.Identity.Topic},
		{"Host", data.Identity.HostEmail},
		{"Generated", data.GeneratedAt.In(r.loc).Format(time.RFC3339)},
		{"Decision", proceedLine(e)},
		{"Duration flag", e.DurationFlag},
		{"Behavior flag", e.BehaviorFlag},
		{"Word count", e.WordCount},
		{"Estimated minutes", e.EstimatedMinutes},
		{"Issues", issuesLine(e)},
		{"Unanswered questions", unansweredLine(e)},
		{"Summary", e.SummaryText},
	}
	if a := data.Analysis; a != nil {
		rows = append(rows,
			[2]any{"Score", a.Score},
			[2]any{"Consult duration", a.ConsultDuration},
			[2]any{"Anomalies", a.Anomalies},
			[2]any{"Model output", a.Text()},
		)
	}

	if err := writeRows(f, SheetReview, []string{"Field", "Value"}, rows); err != nil {
		return nil, err
	}

	if a := data.Analysis; a.Structured() {
		if _, err := f.NewSheet(SheetSections); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		sections := make([][2]any, 0, len(a.Sections))
		for i, s := range a.Sections {
			title := fmt.Sprintf("Section %d", i+1)
			if i < len(ai.FrameworkSections) {
				title = ai.FrameworkSections[i]
			}
			sections = append(sections, [2]any{fmt.Sprintf("%d. %s", i+1, title), s})
		}
		if err := writeRows(f, SheetSections, []string{"Section", "Notes"}, sections); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return &entities.Report{
		Filename: Filename(data, ".xlsx", r.loc),
		Body:     buf.Bytes(),
		MimeType: entities.MimeTypeXLSX,
	}, nil
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][2]any) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		for col, v := range row {
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 100)
}
