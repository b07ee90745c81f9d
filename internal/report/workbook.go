package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/runs"
)

// Sheet names.
const (
	SheetAssessments = "Client Assessments"
	SheetFailures    = "Failures"
	SheetSummary     = "Summary"
)

// Recommendation fill colors.
var recommendationFills = map[classifications.Recommendation]string{
	classifications.RecommendContinue:        "C6EFCE",
	classifications.RecommendCure:            "FFEB9C",
	classifications.RecommendTerminate:       "FFC7CE",
	classifications.RecommendExecutiveReview: "BDD7EE",
}

var assessmentColumns = []struct {
	title string
	width float64
}{
	{"#", 5},
	{"Client", 24},
	{"Case", 16},
	{"Document", 28},
	{"Label", 18},
	{"Recommendation", 18},
	{"Notice Type", 14},
	{"Firm Fault", 11},
	{"Firm Fault Explanation", 40},
	{"Current Status", 24},
	{"Rationale", 60},
	{"Evidence", 60},
	{"Overrides", 40},
	{"Attempts", 9},
	{"Model", 18},
}

// Workbook renders the report as an xlsx workbook with an assessments
// sheet, a failures sheet and a summary sheet.
type Workbook struct{}

func (Workbook) Render(w io.Writer, r *runs.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &workbookBuilder{f: f}
	if err := b.styles(); err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", SheetAssessments); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := b.assessments(r); err != nil {
		return fmt.Errorf("write %s: %w", SheetAssessments, err)
	}
	if err := b.failures(r); err != nil {
		return fmt.Errorf("write %s: %w", SheetFailures, err)
	}
	if err := b.summary(r); err != nil {
		return fmt.Errorf("write %s: %w", SheetSummary, err)
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func (Workbook) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type workbookBuilder struct {
	f        *excelize.File
	header   int
	wrap     int
	faultYes int
	fills    map[classifications.Recommendation]int
	bold     int
}

func (b *workbookBuilder) styles() error {
	var err error
	if b.header, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"305496"}},
		Alignment: &excelize.Alignment{Vertical: "center"},
	}); err != nil {
		return err
	}
	if b.wrap, err = b.f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	}); err != nil {
		return err
	}
	if b.faultYes, err = b.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "C00000"},
		Alignment: &excelize.Alignment{Vertical: "top"},
	}); err != nil {
		return err
	}
	if b.bold, err = b.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return err
	}

	b.fills = make(map[classifications.Recommendation]int, len(recommendationFills))
	for rec, color := range recommendationFills {
		id, err := b.f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: &excelize.Alignment{Vertical: "top"},
		})
		if err != nil {
			return err
		}
		b.fills[rec] = id
	}
	return nil
}

func (b *workbookBuilder) assessments(r *runs.Report) error {
	sheet := SheetAssessments

	titles := make([]any, len(assessmentColumns))
	for i, c := range assessmentColumns {
		titles[i] = c.title
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := b.f.SetColWidth(sheet, col, col, c.width); err != nil {
			return err
		}
	}
	if err := b.headerRow(sheet, titles); err != nil {
		return err
	}

	for i, res := range r.Results {
		row := i + 2
		values := []any{
			i + 1,
			res.ClientName,
			res.CaseID,
			res.DocumentID,
			string(res.Label),
			string(res.Recommendation),
			string(res.NoticeType),
			string(res.FirmFault),
			res.FirmFaultExplanation,
			res.CurrentStatus,
			res.Rationale,
			evidenceText(res.Evidence),
			overridesText(res.Overrides),
			res.Attempts,
			res.Model,
		}
		if err := b.row(sheet, row, values, b.wrap); err != nil {
			return err
		}

		if id, ok := b.fills[res.Recommendation]; ok {
			if err := b.styleCell(sheet, 6, row, id); err != nil {
				return err
			}
		}
		if res.FirmFault == classifications.FaultYes {
			if err := b.styleCell(sheet, 8, row, b.faultYes); err != nil {
				return err
			}
		}
	}

	return b.freezeAndFilter(sheet, len(assessmentColumns), len(r.Results))
}

func (b *workbookBuilder) failures(r *runs.Report) error {
	sheet := SheetFailures
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}

	widths := []float64{5, 40, 24, 16, 80}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := b.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := b.headerRow(sheet, []any{"#", "Document", "Client", "Stage", "Cause"}); err != nil {
		return err
	}

	for i, fl := range r.Failures {
		values := []any{fl.Position + 1, fl.DocumentID, fl.ClientName, fl.Stage, fl.Cause}
		if err := b.row(sheet, i+2, values, b.wrap); err != nil {
			return err
		}
	}

	return b.freezeAndFilter(sheet, len(widths), len(r.Failures))
}

func (b *workbookBuilder) summary(r *runs.Report) error {
	sheet := SheetSummary
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return err
	}

	row := 1
	put := func(label string, value any, style int) error {
		if err := b.row(sheet, row, []any{label, value}, 0); err != nil {
			return err
		}
		if style != 0 {
			if err := b.styleCell(sheet, 1, row, style); err != nil {
				return err
			}
		}
		row++
		return nil
	}
	section := func(title string) error {
		row++
		if err := b.row(sheet, row, []any{title}, 0); err != nil {
			return err
		}
		if err := b.styleCell(sheet, 1, row, b.header); err != nil {
			return err
		}
		row++
		return nil
	}

	entries := []struct {
		label string
		value any
	}{
		{"Run ID", r.RunID.String()},
		{"Policy Version", r.PolicyVersion},
		{"Started", r.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Completed", r.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		{"Canceled", r.Canceled},
		{"Total Documents", r.Summary.Total},
		{"Classified", r.Summary.Succeeded},
		{"Failed", r.Summary.Failed},
	}
	for _, e := range entries {
		if err := put(e.label, e.value, b.bold); err != nil {
			return err
		}
	}

	if err := section("Labels"); err != nil {
		return err
	}
	for _, l := range classifications.Labels {
		if err := put(string(l), r.Summary.ByLabel[l], 0); err != nil {
			return err
		}
	}

	if err := section("Recommendations"); err != nil {
		return err
	}
	for _, rec := range classifications.Recommendations {
		if err := put(string(rec), r.Summary.ByRecommendation[rec], b.fills[rec]); err != nil {
			return err
		}
	}

	if err := section("Notice Types"); err != nil {
		return err
	}
	for _, n := range classifications.NoticeTypes {
		if err := put(string(n), r.Summary.ByNoticeType[n], 0); err != nil {
			return err
		}
	}

	if err := section("Firm Fault"); err != nil {
		return err
	}
	for _, ff := range classifications.FirmFaults {
		style := 0
		if ff == classifications.FaultYes {
			style = b.faultYes
		}
		if err := put(string(ff), r.Summary.ByFirmFault[ff], style); err != nil {
			return err
		}
	}

	return nil
}

func (b *workbookBuilder) headerRow(sheet string, titles []any) error {
	if err := b.f.SetSheetRow(sheet, "A1", &titles); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(titles), 1)
	return b.f.SetCellStyle(sheet, "A1", end, b.header)
}

func (b *workbookBuilder) row(sheet string, row int, values []any, style int) error {
	start, _ := excelize.CoordinatesToCellName(1, row)
	if err := b.f.SetSheetRow(sheet, start, &values); err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	end, _ := excelize.CoordinatesToCellName(len(values), row)
	return b.f.SetCellStyle(sheet, start, end, style)
}

func (b *workbookBuilder) styleCell(sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return b.f.SetCellStyle(sheet, cell, cell, style)
}

func (b *workbookBuilder) freezeAndFilter(sheet string, cols, rows int) error {
	if err := b.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(cols, max(rows, 1)+1)
	return b.f.AutoFilter(sheet, "A1:"+end, nil)
}

func evidenceText(evidence []classifications.Evidence) string {
	lines := make([]string, len(evidence))
	for i, e := range evidence {
		lines[i] = fmt.Sprintf("[%d] %q", e.Event+1, e.Quote)
	}
	return strings.Join(lines, "\n")
}

func overridesText(overrides []classifications.Override) string {
	lines := make([]string, len(overrides))
	for i, o := range overrides {
		lines[i] = fmt.Sprintf("%s: %s -> %s (%s)", o.Rule, o.From, o.To, o.Reason)
	}
	return strings.Join(lines, "\n")
}
