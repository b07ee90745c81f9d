package workflow

import (
	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

// CaseState is the position of a case in its processing lifecycle.
type CaseState string

const (
	StatePending              CaseState = "pending"
	StateParsing              CaseState = "parsing"
	StateParsed               CaseState = "parsed"
	StateExtractionFailed     CaseState = "extraction_failed"
	StateClassifying          CaseState = "classifying"
	StateClassified           CaseState = "classified"
	StateClassificationFailed CaseState = "classification_failed"
)

// Terminal reports whether no further transition is possible from s.
func (s CaseState) Terminal() bool {
	switch s {
	case StateClassified, StateExtractionFailed, StateClassificationFailed:
		return true
	}
	return false
}

// Failed reports whether s is a terminal failure.
func (s CaseState) Failed() bool {
	return s == StateExtractionFailed || s == StateClassificationFailed
}

// Stage names the processing stage a failed state belongs to.
func (s CaseState) Stage() string {
	switch s {
	case StateExtractionFailed:
		return "extraction"
	case StateClassificationFailed:
		return "classification"
	}
	return ""
}

// State bag keys.
const (
	KeyDocumentID = "document_id"
	KeyCaseState  = "case_state"
	KeyRaw        = "raw_document"
	KeyCase       = "case"
	KeySignals    = "signals"
	KeyResult     = "result"
	KeyError      = "error"
)

// Outcome is the terminal view of one case after the workflow completes.
// Exactly one of Result and Err is set.
type Outcome struct {
	DocumentID string
	State      CaseState
	Case       *timeline.Case
	Signals    *signals.Summary
	Result     *classifications.Result
	Err        error
}
