// Package timeline turns the raw text of a case-activity document into
// case metadata and an ordered sequence of dated events. Parsing is
// heuristic and best-effort: a field that cannot be found is absent, not
// an error, and an event whose date cannot be read keeps its position
// with a nil date.
package timeline

import (
	"path/filepath"
	"strings"
	"time"
)

// RawDocument is the extracted text of one input document.
type RawDocument struct {
	ID    string   `json:"id"`
	Pages []string `json:"-"`
}

// Text joins the document pages with newlines.
func (d RawDocument) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Category is a best-effort classification of an event's activity type.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryCommunication Category = "communication"
	CategoryBilling       Category = "billing"
	CategoryFiling        Category = "filing"
	CategoryNote          Category = "note"
)

// Event is a single timeline entry. Index is the zero-based position of
// the entry in the source document and is the reference used for
// evidence citation.
type Event struct {
	Index     int        `json:"index"`
	Date      *time.Time `json:"date,omitempty"`
	RawDate   string     `json:"raw_date,omitempty"`
	Actor     *string    `json:"actor,omitempty"`
	Category  Category   `json:"category"`
	Content   string     `json:"content"`
	Truncated bool       `json:"truncated,omitempty"`
}

// Status is the case status, normalized when recognizable.
type Status string

const (
	StatusActive     Status = "Active"
	StatusPending    Status = "Pending"
	StatusClosed     Status = "Closed"
	StatusOnHold     Status = "On Hold"
	StatusTerminated Status = "Terminated"
)

// Metadata holds the header fields of a case document. Pointer fields
// are nil when the field was not found. ClientName is never empty once
// the parser returns.
type Metadata struct {
	CaseNumber *string    `json:"case_number,omitempty"`
	CaseTitle  *string    `json:"case_title,omitempty"`
	ClientName string     `json:"client_name"`
	Attorney   *string    `json:"attorney,omitempty"`
	Paralegal  *string    `json:"paralegal,omitempty"`
	CaseType   *string    `json:"case_type,omitempty"`
	Opened     *time.Time `json:"opened,omitempty"`
	Status     *Status    `json:"status,omitempty"`
}

// Case is the parsed form of one document: its metadata and timeline.
type Case struct {
	DocumentID string   `json:"document_id"`
	Metadata   Metadata `json:"metadata"`
	Events     []Event  `json:"events"`
}

// CaseID returns the case number when present, otherwise an identifier
// derived from the document name.
func (c *Case) CaseID() string {
	if c.Metadata.CaseNumber != nil {
		return *c.Metadata.CaseNumber
	}
	return documentStem(c.DocumentID)
}

func documentStem(id string) string {
	base := filepath.Base(id)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// nameFromDocument derives a readable name from the document stem. A
// stem made only of separators falls back to the base name. The result
// is never empty.
func nameFromDocument(id string) string {
	stem := documentStem(id)
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	if name := strings.Join(strings.Fields(stem), " "); name != "" {
		return name
	}
	if base := strings.TrimSpace(filepath.Base(id)); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return "unknown client"
}

// NormalizeStatus maps common status spellings onto the closed set and
// passes anything else through trimmed.
func NormalizeStatus(s string) Status {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	switch key {
	case "active", "open", "in progress", "ongoing":
		return StatusActive
	case "pending", "under review", "pending review", "awaiting":
		return StatusPending
	case "closed", "complete", "completed", "resolved":
		return StatusClosed
	case "on hold", "hold", "paused", "suspended":
		return StatusOnHold
	case "terminated", "withdrawn", "disengaged":
		return StatusTerminated
	}
	return Status(strings.TrimSpace(s))
}
