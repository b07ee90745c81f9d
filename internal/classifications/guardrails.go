package classifications

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

type evidenceItem struct {
	Event *int   `json:"event"`
	Quote string `json:"quote"`
}

// UnmarshalJSON accepts either {"event": n, "quote": "..."} or a bare
// quote string.
func (e *evidenceItem) UnmarshalJSON(data []byte) error {
	var quote string
	if err := json.Unmarshal(data, &quote); err == nil {
		*e = evidenceItem{Quote: quote}
		return nil
	}

	type plain evidenceItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = evidenceItem(p)
	return nil
}

type response struct {
	Label                string         `json:"label"`
	Recommendation       string         `json:"recommendation"`
	NoticeType           string         `json:"notice_type"`
	FirmFault            string         `json:"firm_fault"`
	FirmFaultExplanation string         `json:"firm_fault_explanation"`
	CurrentStatus        string         `json:"current_status"`
	Rationale            string         `json:"rationale"`
	Evidence             []evidenceItem `json:"evidence"`
}

// validate turns a parsed response into a Result or rejects it. Rejections
// carry ErrInvalidLabel, ErrMalformed, or ErrInconsistent and are retried.
// The delinquency override runs before the consistency check, so only
// the service's own label/recommendation pairing can be rejected; a pair
// made inconsistent by the override is escalated instead.
func validate(c *timeline.Case, s signals.Summary, rules Rules, resp response) (*Result, error) {
	label, err := ParseLabel(resp.Label)
	if err != nil {
		return nil, err
	}

	rec, err := ParseRecommendation(resp.Recommendation)
	if err != nil {
		return nil, err
	}

	r := &Result{
		CaseID:               c.CaseID(),
		DocumentID:           c.DocumentID,
		ClientName:           c.Metadata.ClientName,
		Label:                label,
		Recommendation:       rec,
		FirmFaultExplanation: strings.TrimSpace(resp.FirmFaultExplanation),
		CurrentStatus:        strings.TrimSpace(resp.CurrentStatus),
		Rationale:            strings.TrimSpace(resp.Rationale),
	}

	r.applyDelinquency(s)

	if !rules.Allows(r.Label, r.Recommendation) {
		if r.Label == label {
			return nil, fmt.Errorf("%w: %s with %s", ErrInconsistent, label, rec)
		}
		to := rules.escalate(r.Label, r.Recommendation)
		r.override("recommendation", string(r.Recommendation), string(to),
			fmt.Sprintf("%s is not an allowed action for %s", r.Recommendation, r.Label))
		r.Recommendation = to
	}

	r.applyNotice(resp.NoticeType)
	r.applyFirmFault(resp.FirmFault)
	r.Evidence, r.DroppedQuotes = verifyQuotes(c.Events, resp.Evidence)

	if len(c.Events) == 0 {
		if r.NoticeType != NoticeUndetermined {
			r.override("empty_timeline", string(r.NoticeType), string(NoticeUndetermined), "no timeline events to support a notice finding")
			r.NoticeType = NoticeUndetermined
		}
		if r.FirmFault != FaultUnclear {
			r.override("empty_timeline", string(r.FirmFault), string(FaultUnclear), "no timeline events to support a firm-fault finding")
			r.FirmFault = FaultUnclear
		}
	}

	if err := checkInvariants(r, s, rules); err != nil {
		return nil, err
	}
	return r, nil
}

// applyDelinquency folds a deterministic delinquency signal into the
// label. E-Special keeps its label since conduct outranks payment status.
func (r *Result) applyDelinquency(s signals.Summary) {
	if !s.Delinquency.Present || r.Label.Delinquent() {
		return
	}

	reason := "delinquency signal present"
	if s.PastDueBalance != nil {
		reason = fmt.Sprintf("past-due balance of %s", *s.PastDueBalance)
	}

	switch r.Label {
	case LabelNormal:
		r.override("delinquency", string(r.Label), string(LabelDelinquent), reason)
		r.Label = LabelDelinquent
	case LabelSpecial:
		r.override("delinquency", string(r.Label), string(LabelDelinquentSpecial), reason)
		r.Label = LabelDelinquentSpecial
	case LabelESpecial:
		r.override("delinquency", string(r.Label), string(r.Label), reason+"; E-Special takes precedence")
	}
}

func (r *Result) applyNotice(raw string) {
	notice, ok := ParseNoticeType(raw)
	if !ok {
		r.override("notice_type", raw, string(notice), "unrecognized notice type")
	}
	r.NoticeType = notice
}

func (r *Result) applyFirmFault(raw string) {
	fault, ok := ParseFirmFault(raw)
	if !ok {
		r.override("firm_fault", raw, string(fault), "unrecognized firm-fault value")
	}
	r.FirmFault = fault
}

func (r *Result) override(rule, from, to, reason string) {
	r.Overrides = append(r.Overrides, Override{Rule: rule, From: from, To: to, Reason: reason})
}

// verifyQuotes keeps quotes that appear verbatim in an event's content.
// A quote cited against the wrong event is re-attributed to the first
// event that contains it; a quote found nowhere is dropped.
func verifyQuotes(events []timeline.Event, items []evidenceItem) ([]Evidence, int) {
	kept := make([]Evidence, 0, len(items))
	dropped := 0

	for _, item := range items {
		quote := strings.Trim(strings.TrimSpace(item.Quote), "\"“”")
		if quote == "" {
			dropped++
			continue
		}

		idx := -1
		if item.Event != nil && *item.Event >= 0 && *item.Event < len(events) &&
			strings.Contains(events[*item.Event].Content, quote) {
			idx = *item.Event
		} else {
			for i, ev := range events {
				if strings.Contains(ev.Content, quote) {
					idx = i
					break
				}
			}
		}

		if idx < 0 {
			dropped++
			continue
		}

		e := Evidence{Event: events[idx].Index, Quote: quote}
		if !slices.Contains(kept, e) {
			kept = append(kept, e)
		}
	}

	return kept, dropped
}

func checkInvariants(r *Result, s signals.Summary, rules Rules) error {
	if !rules.Allows(r.Label, r.Recommendation) {
		return fmt.Errorf("%w: %s with %s", ErrInconsistent, r.Label, r.Recommendation)
	}
	if s.Delinquency.Present && !r.Label.Delinquent() && r.Label != LabelESpecial {
		return fmt.Errorf("%w: delinquency signal not reflected in %s", ErrInconsistent, r.Label)
	}
	return nil
}
