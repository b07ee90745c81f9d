package timeline_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/auditor/internal/timeline"
)

const caseExport = `Activities & Timeline: Sarah Johnson - I-485 Adjustment
Case #: 2024-0117
Attorney: Maria Lopez
Paralegal: Tom Reed
Case Type: Immigration
Opened: 01/15/2024
Status: Open

Timeline & Activities

Communications
03/01/2025 Email from Sarah Johnson: Asked for an update on the filing.
03/04/2025 10:30 AM | Tom Reed | Phone Call | Returned call, explained processing times.
Billing
03/10/2025 Invoice #112 sent. Past due balance: $500.00
13/45/2025 Note by Maria Lopez: Reviewed file
and confirmed next steps.
Documents
03/11/2025 Should not appear
`

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newParser(t *testing.T, cfg timeline.Config) *timeline.Parser {
	t.Helper()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return timeline.NewParser(cfg)
}

func TestParseCaseExport(t *testing.T) {
	p := newParser(t, timeline.Config{})

	c, err := p.Parse(timeline.RawDocument{ID: "exports/johnson.pdf", Pages: []string{caseExport}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantMeta := timeline.Metadata{
		CaseNumber: ptr("2024-0117"),
		CaseTitle:  ptr("Sarah Johnson - I-485 Adjustment"),
		ClientName: "Sarah Johnson",
		Attorney:   ptr("Maria Lopez"),
		Paralegal:  ptr("Tom Reed"),
		CaseType:   ptr("Immigration"),
		Opened:     date(2024, time.January, 15),
		Status:     ptr(timeline.StatusActive),
	}
	if diff := cmp.Diff(wantMeta, c.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	wantEvents := []timeline.Event{
		{
			Index:    0,
			Date:     date(2025, time.March, 1),
			RawDate:  "03/01/2025",
			Actor:    ptr("Sarah Johnson"),
			Category: timeline.CategoryCommunication,
			Content:  "Asked for an update on the filing.",
		},
		{
			Index:    1,
			Date:     date(2025, time.March, 4),
			RawDate:  "03/04/2025",
			Actor:    ptr("Tom Reed"),
			Category: timeline.CategoryCommunication,
			Content:  "Returned call, explained processing times.",
		},
		{
			Index:    2,
			Date:     date(2025, time.March, 10),
			RawDate:  "03/10/2025",
			Category: timeline.CategoryBilling,
			Content:  "Invoice #112 sent. Past due balance: $500.00",
		},
		{
			Index:    3,
			RawDate:  "13/45/2025",
			Actor:    ptr("Maria Lopez"),
			Category: timeline.CategoryNote,
			Content:  "Reviewed file and confirmed next steps.",
		},
	}
	if diff := cmp.Diff(wantEvents, c.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if got := c.CaseID(); got != "2024-0117" {
		t.Errorf("CaseID = %q, want 2024-0117", got)
	}
}

func TestParsePreservesSourceOrder(t *testing.T) {
	text := strings.Join([]string{
		"Timeline",
		"2025-03-05 Third by date",
		"2025-01-01 First by date",
		"99/99/2025 Unreadable date",
		"2025-02-01 Second by date",
	}, "\n")

	c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "order.txt", Pages: []string{text}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []string{"Third by date", "First by date", "Unreadable date", "Second by date"}
	var got []string
	for i, ev := range c.Events {
		if ev.Index != i {
			t.Errorf("event %d has Index %d", i, ev.Index)
		}
		got = append(got, ev.Content)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if c.Events[2].Date != nil {
		t.Errorf("unparseable date = %v, want nil", c.Events[2].Date)
	}
}

func TestParseWithoutTimelineHeader(t *testing.T) {
	text := "Case No. 88-12\nClient: Dana Reyes\n2025-01-05 Retainer signed.\n2025-01-20 Client threatened to report firm to the State Bar."

	c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "reyes.txt", Pages: []string{text}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.Metadata.CaseNumber == nil || *c.Metadata.CaseNumber != "88-12" {
		t.Errorf("CaseNumber = %v, want 88-12", c.Metadata.CaseNumber)
	}
	if c.Metadata.ClientName != "Dana Reyes" {
		t.Errorf("ClientName = %q, want Dana Reyes", c.Metadata.ClientName)
	}
	if len(c.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(c.Events))
	}
	if got := c.Events[1].Content; got != "Client threatened to report firm to the State Bar." {
		t.Errorf("content = %q", got)
	}
}

func TestParseEmptyTimeline(t *testing.T) {
	text := "Case #: 7\nClient: Pat Kim\nStatus: Closed\nActivity Log\nDocuments\nretainer.pdf"

	c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "kim.txt", Pages: []string{text}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Events == nil || len(c.Events) != 0 {
		t.Errorf("events = %#v, want empty", c.Events)
	}
	if c.Metadata.Status == nil || *c.Metadata.Status != timeline.StatusClosed {
		t.Errorf("Status = %v, want Closed", c.Metadata.Status)
	}
}

func TestParsePipeRows(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		actor   *string
		content string
	}{
		{
			name:    "pipe in prose",
			line:    "01/05/2026 Client paid $200 | balance of $300 remains past due",
			content: "Client paid $200 | balance of $300 remains past due",
		},
		{
			name:    "name and description",
			line:    "01/05/2026 Tom Reed | Mailed the signed retainer.",
			actor:   ptr("Tom Reed"),
			content: "Mailed the signed retainer.",
		},
		{
			name:    "user, type and description",
			line:    "01/05/2026 | Maria Lopez | Note | Client disputes invoice | wants a call",
			actor:   ptr("Maria Lopez"),
			content: "Client disputes invoice | wants a call",
		},
	}

	p := newParser(t, timeline.Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := p.Parse(timeline.RawDocument{ID: "rows.txt", Pages: []string{"Timeline\n" + tt.line}})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(c.Events) != 1 {
				t.Fatalf("events = %d, want 1", len(c.Events))
			}
			ev := c.Events[0]
			if diff := cmp.Diff(tt.actor, ev.Actor); diff != "" {
				t.Errorf("actor (-want +got):\n%s", diff)
			}
			if ev.Content != tt.content {
				t.Errorf("Content = %q, want %q", ev.Content, tt.content)
			}
		})
	}
}

func TestParseClientNameFallback(t *testing.T) {
	tests := []struct {
		name string
		id   string
		text string
		want string
	}{
		{
			name: "explicit client field",
			id:   "a.txt",
			text: "Client Name: Lee Park\nMatter: Park v. Stone\nTimeline\n2025-01-01 Intake",
			want: "Lee Park",
		},
		{
			name: "case title",
			id:   "b.txt",
			text: "Matter: Ana Cruz (Asylum)\nTimeline\n2025-01-01 Intake",
			want: "Ana Cruz",
		},
		{
			name: "title line",
			id:   "c.txt",
			text: "Dana Reyes - Activity Timeline\nTimeline\n2025-01-01 Intake",
			want: "Dana Reyes",
		},
		{
			name: "document name",
			id:   "cases/jordan_lee-intake.pdf",
			text: "Timeline\n2025-01-01 Intake",
			want: "jordan lee intake",
		},
		{
			name: "separator-only document name",
			id:   "cases/__.pdf",
			text: "Timeline\n2025-01-01 Intake",
			want: "__.pdf",
		},
	}

	p := newParser(t, timeline.Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := p.Parse(timeline.RawDocument{ID: tt.id, Pages: []string{tt.text}})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if c.Metadata.ClientName != tt.want {
				t.Errorf("ClientName = %q, want %q", c.Metadata.ClientName, tt.want)
			}
		})
	}
}

func TestParseLabelOnOwnLine(t *testing.T) {
	text := "Attorney:\nMaria Lopez\nStatus:\nOn Hold\nTimeline\n2025-01-01 Intake"

	c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "x.txt", Pages: []string{text}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Metadata.Attorney == nil || *c.Metadata.Attorney != "Maria Lopez" {
		t.Errorf("Attorney = %v, want Maria Lopez", c.Metadata.Attorney)
	}
	if c.Metadata.Status == nil || *c.Metadata.Status != timeline.StatusOnHold {
		t.Errorf("Status = %v, want On Hold", c.Metadata.Status)
	}
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		line string
		want *time.Time
	}{
		{"3/7/2025 Called client", date(2025, time.March, 7)},
		{"3/7/25 Called client", date(2025, time.March, 7)},
		{"2025-03-07 Called client", date(2025, time.March, 7)},
		{"07-03-2025 Called client", date(2025, time.March, 7)},
		{"March 7, 2025 Called client", date(2025, time.March, 7)},
		{"Mar. 7 2025 Called client", date(2025, time.March, 7)},
		{"Sept 7, 2025 Called client", date(2025, time.September, 7)},
		{"2025-03-07 at 4:15 PM Called client", date(2025, time.March, 7)},
	}

	p := newParser(t, timeline.Config{})
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, err := p.Parse(timeline.RawDocument{ID: "d.txt", Pages: []string{"Timeline\n" + tt.line}})
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(c.Events) != 1 {
				t.Fatalf("events = %d, want 1", len(c.Events))
			}
			ev := c.Events[0]
			if diff := cmp.Diff(tt.want, ev.Date); diff != "" {
				t.Errorf("date mismatch (-want +got):\n%s", diff)
			}
			if ev.Content != "Called client" {
				t.Errorf("content = %q, want Called client", ev.Content)
			}
		})
	}
}

func TestParseLeadingTextBecomesUndatedEvent(t *testing.T) {
	text := "Timeline\nCarried over from prior system\n2025-01-02 Intake call"

	c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "x.txt", Pages: []string{text}})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(c.Events))
	}
	if c.Events[0].Date != nil || c.Events[0].RawDate != "" {
		t.Errorf("first event should be undated, got %+v", c.Events[0])
	}
}

func TestParseTruncation(t *testing.T) {
	long := strings.Repeat("a", 40)
	text := "Timeline\n2025-01-02 " + long

	t.Run("disabled by default", func(t *testing.T) {
		c, err := newParser(t, timeline.Config{}).Parse(timeline.RawDocument{ID: "x.txt", Pages: []string{text}})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if c.Events[0].Truncated || c.Events[0].Content != long {
			t.Errorf("content truncated without a maximum: %+v", c.Events[0])
		}
	})

	t.Run("never below the minimum", func(t *testing.T) {
		cfg := timeline.Config{MaxContentLength: 10, MinContentLength: 20}
		c, err := newParser(t, cfg).Parse(timeline.RawDocument{ID: "x.txt", Pages: []string{text}})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		ev := c.Events[0]
		if !ev.Truncated || len(ev.Content) != 20 {
			t.Errorf("got %d chars truncated=%v, want 20 chars truncated", len(ev.Content), ev.Truncated)
		}
	})
}

func TestParseIsDeterministic(t *testing.T) {
	p := newParser(t, timeline.Config{})
	doc := timeline.RawDocument{ID: "exports/johnson.pdf", Pages: []string{caseExport}}

	first, err := p.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := p.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second parse differs (-first +second):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  error
	}{
		{"no pages", nil, timeline.ErrNoText},
		{"whitespace only", []string{"  \n\t", "\r\n"}, timeline.ErrNoText},
		{"invalid utf-8", []string{"Timeline\n\xff\xfe2025-01-01"}, timeline.ErrEncoding},
		{"mis-decoded text", []string{"��� ab"}, timeline.ErrEncoding},
		{"no timeline", []string{"Client: Pat Kim\nJust some notes."}, timeline.ErrNoTimeline},
	}

	p := newParser(t, timeline.Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(timeline.RawDocument{ID: "bad.pdf", Pages: tt.pages})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var extraction *timeline.ExtractionError
			if !errors.As(err, &extraction) {
				t.Fatalf("error %T is not an ExtractionError", err)
			}
			if extraction.DocumentID != "bad.pdf" {
				t.Errorf("DocumentID = %q, want bad.pdf", extraction.DocumentID)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]timeline.Status{
		"open":            timeline.StatusActive,
		"  In  Progress ": timeline.StatusActive,
		"Under Review":    timeline.StatusPending,
		"COMPLETED":       timeline.StatusClosed,
		"on hold":         timeline.StatusOnHold,
		"Withdrawn":       timeline.StatusTerminated,
		" Appeal filed ":  timeline.Status("Appeal filed"),
	}
	for in, want := range tests {
		if got := timeline.NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
