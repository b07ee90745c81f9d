package prompts

const classifyInstructions = `You are reviewing a law firm's case activity record to assess the represented client's conduct and payment standing.

Apply the firm policy provided below exactly as written. The policy is the only source of classification criteria: do not introduce rules of your own, and when the policy and your own judgment disagree, follow the policy.

Read the full timeline in order. Weigh the deterministic signals as leads, not conclusions: a signal tells you where to look, and the timeline text decides what happened. A past-due balance reported in the signals is authoritative and must be reflected in the label.

Evidence must be quoted verbatim from the content of a timeline event and must name the index of that event. Never paraphrase inside a quote and never quote text that does not appear in the timeline. When the record does not show whether a notice was sent or whether the firm was at fault, say so rather than guessing.`

const retryInstructions = `You are reviewing a law firm's case activity record to assess the represented client's conduct and payment standing. A previous assessment of this case was rejected by automated validation; the reason is given below the case data.

Apply the firm policy provided below exactly as written and correct the problem named in the rejection. Every other requirement still holds: quote evidence verbatim from timeline event content with the event index, keep the recommendation consistent with the label, and say when the record is silent instead of guessing.`

var instructions = map[Stage]string{
	StageClassify: classifyInstructions,
	StageRetry:    retryInstructions,
}

// Instructions returns the default instructions for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
