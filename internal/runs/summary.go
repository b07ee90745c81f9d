package runs

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditor/internal/classifications"
)

// Stages recorded on failures.
const (
	StageExtraction     = "extraction"
	StageClassification = "classification"
	StageNotStarted     = "not_started"
	StageWorkflow       = "workflow"
)

// Failure records a document that produced no classification.
type Failure struct {
	Position   int    `json:"position"`
	DocumentID string `json:"document_id"`
	ClientName string `json:"client_name,omitempty"`
	Stage      string `json:"stage"`
	Cause      string `json:"cause"`
	Err        error  `json:"-"`
}

// Summary aggregates counts over a run. Per-category counts cover
// successful classifications only and each sums to Succeeded.
type Summary struct {
	Total            int                                    `json:"total"`
	Succeeded        int                                    `json:"succeeded"`
	Failed           int                                    `json:"failed"`
	ByLabel          map[classifications.Label]int          `json:"by_label"`
	ByRecommendation map[classifications.Recommendation]int `json:"by_recommendation"`
	ByNoticeType     map[classifications.NoticeType]int     `json:"by_notice_type"`
	ByFirmFault      map[classifications.FirmFault]int      `json:"by_firm_fault"`
}

func newSummary(total int) Summary {
	return Summary{
		Total:            total,
		ByLabel:          make(map[classifications.Label]int),
		ByRecommendation: make(map[classifications.Recommendation]int),
		ByNoticeType:     make(map[classifications.NoticeType]int),
		ByFirmFault:      make(map[classifications.FirmFault]int),
	}
}

func (s *Summary) add(r *classifications.Result) {
	s.Succeeded++
	s.ByLabel[r.Label]++
	s.ByRecommendation[r.Recommendation]++
	s.ByNoticeType[r.NoticeType]++
	s.ByFirmFault[r.FirmFault]++
}

// Report is the outcome of one run. Results and Failures are ordered by
// the position of their document in the run's input.
type Report struct {
	RunID         uuid.UUID                `json:"run_id"`
	PolicyVersion string                   `json:"policy_version"`
	StartedAt     time.Time                `json:"started_at"`
	CompletedAt   time.Time                `json:"completed_at"`
	Canceled      bool                     `json:"canceled"`
	Summary       Summary                  `json:"summary"`
	Results       []classifications.Result `json:"results"`
	Failures      []Failure                `json:"failures"`
}
