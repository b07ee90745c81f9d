package prompts

const assessmentSpec = `Respond with a JSON object matching this exact structure:

{
  "label": "<Normal|Special|E-Special|Delinquent|Delinquent+Special>",
  "recommendation": "<Continue|Cure|Terminate|ExecutiveReview>",
  "notice_type": "<Cure|Termination|None|Undetermined>",
  "firm_fault": "<Yes|No|Unclear>",
  "firm_fault_explanation": "<explanation>",
  "current_status": "<status>",
  "rationale": "<explanation>",
  "evidence": [
    {"event": 0, "quote": "<verbatim excerpt>"}
  ]
}

Field constraints:
- label: Exactly one taxonomy label from the policy. Use
  Delinquent+Special when the client is both past due and exhibits
  Special conduct.
- recommendation: The action the policy prescribes for the label.
  Normal without a past-due balance maps to Continue. E-Special maps
  to Terminate or ExecutiveReview, never Continue.
- notice_type: The formal notice the record shows was sent. Cure for a
  notice to cure, Termination for a notice of termination, None when the
  record shows no notice, Undetermined when the record cannot tell.
- firm_fault: Whether the firm's own error contributed. Unclear when the
  record lacks the information to decide.
- firm_fault_explanation: What the firm did wrong when Yes, "No firm
  fault identified." when No, and what information is missing when
  Unclear.
- current_status: The case status as the record shows it (e.g. Active,
  Pending Cure, Terminated, Recommended for Termination).
- rationale: Two or three sentences tying the label and recommendation
  to specific timeline evidence and to the policy rule applied.
- evidence: One to three entries. event is the index of the timeline
  event quoted; quote is an exact, contiguous excerpt of that event's
  content.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Use only the enumerated values shown for label, recommendation,
  notice_type, and firm_fault
- Never quote text that is not present in the referenced event
- An empty timeline yields notice_type Undetermined and firm_fault Unclear`

var specs = map[Stage]string{
	StageClassify: assessmentSpec,
	StageRetry:    assessmentSpec,
}

// Spec returns the response specification for a stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
