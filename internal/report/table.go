package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/runs"
)

// Table renders an aligned plain-text summary for a terminal. Width caps
// the client and cause columns.
type Table struct {
	Width int
}

func (t Table) Render(w io.Writer, r *runs.Report) error {
	tw := &tableWriter{w: w}

	tw.printf("Run %s  policy %s  %d/%d classified\n\n",
		r.RunID, r.PolicyVersion, r.Summary.Succeeded, r.Summary.Total)

	if len(r.Results) > 0 {
		rows := [][]string{{"#", "CLIENT", "LABEL", "RECOMMENDATION", "NOTICE", "FIRM FAULT"}}
		for i, res := range r.Results {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				clip(res.ClientName, t.Width),
				string(res.Label),
				string(res.Recommendation),
				string(res.NoticeType),
				string(res.FirmFault),
			})
		}
		tw.table(rows)
	}

	if len(r.Failures) > 0 {
		tw.printf("\nFailed documents\n")
		rows := [][]string{{"#", "DOCUMENT", "STAGE", "CAUSE"}}
		for _, f := range r.Failures {
			rows = append(rows, []string{
				strconv.Itoa(f.Position + 1),
				clip(f.DocumentID, t.Width),
				f.Stage,
				clip(f.Cause, t.Width*2),
			})
		}
		tw.table(rows)
	}

	tw.printf("\nSummary\n")
	rows := [][]string{{"CATEGORY", "VALUE", "COUNT"}}
	for _, l := range classifications.Labels {
		rows = append(rows, []string{"label", string(l), strconv.Itoa(r.Summary.ByLabel[l])})
	}
	for _, rec := range classifications.Recommendations {
		rows = append(rows, []string{"recommendation", string(rec), strconv.Itoa(r.Summary.ByRecommendation[rec])})
	}
	for _, ff := range classifications.FirmFaults {
		rows = append(rows, []string{"firm fault", string(ff), strconv.Itoa(r.Summary.ByFirmFault[ff])})
	}
	rows = append(rows, []string{"failed", "", strconv.Itoa(r.Summary.Failed)})
	tw.table(rows)

	return tw.err
}

func (Table) ContentType() string {
	return "text/plain; charset=utf-8"
}

type tableWriter struct {
	w   io.Writer
	err error
}

func (tw *tableWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *tableWriter) table(rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		tw.printf("%s\n", strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func clip(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
