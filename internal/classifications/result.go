package classifications

import "time"

// Evidence is a verbatim excerpt of a timeline event.
type Evidence struct {
	Event int    `json:"event"`
	Quote string `json:"quote"`
}

// Override records a deterministic correction applied to the service's
// answer.
type Override struct {
	Rule   string `json:"rule"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Result is the validated classification of one case. It is never
// modified after the engine returns it.
type Result struct {
	CaseID               string         `json:"case_id"`
	DocumentID           string         `json:"document_id"`
	ClientName           string         `json:"client_name"`
	Label                Label          `json:"label"`
	Recommendation       Recommendation `json:"recommendation"`
	NoticeType           NoticeType     `json:"notice_type"`
	FirmFault            FirmFault      `json:"firm_fault"`
	FirmFaultExplanation string         `json:"firm_fault_explanation,omitempty"`
	CurrentStatus        string         `json:"current_status,omitempty"`
	Rationale            string         `json:"rationale"`
	Evidence             []Evidence     `json:"evidence"`
	DroppedQuotes        int            `json:"dropped_quotes"`
	Overrides            []Override     `json:"overrides,omitempty"`
	PolicyVersion        string         `json:"policy_version"`
	Model                string         `json:"model,omitempty"`
	Provider             string         `json:"provider,omitempty"`
	Attempts             int            `json:"attempts"`
	ClassifiedAt         time.Time      `json:"classified_at"`
}
