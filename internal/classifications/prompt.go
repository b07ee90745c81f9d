package classifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/auditor/internal/policy"
	"github.com/JaimeStill/auditor/internal/prompts"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

type eventView struct {
	Index    int               `json:"index"`
	Date     string            `json:"date,omitempty"`
	Actor    *string           `json:"actor,omitempty"`
	Category timeline.Category `json:"category"`
	Content  string            `json:"content"`
}

type caseView struct {
	CaseID     string            `json:"case_id"`
	DocumentID string            `json:"document_id"`
	Metadata   timeline.Metadata `json:"metadata"`
	Events     []eventView       `json:"events"`
	Signals    signals.Summary   `json:"signals"`
}

func newCaseView(c *timeline.Case, s signals.Summary) caseView {
	v := caseView{
		CaseID:     c.CaseID(),
		DocumentID: c.DocumentID,
		Metadata:   c.Metadata,
		Events:     make([]eventView, 0, len(c.Events)),
		Signals:    s,
	}
	for _, ev := range c.Events {
		date := ev.RawDate
		if ev.Date != nil {
			date = ev.Date.Format("2006-01-02")
		}
		v.Events = append(v.Events, eventView{
			Index:    ev.Index,
			Date:     date,
			Actor:    ev.Actor,
			Category: ev.Category,
			Content:  ev.Content,
		})
	}
	return v
}

// ComposePrompt builds the reasoning prompt from the stage instructions,
// the response specification, the policy text with its recommendation
// table, and the case payload.
// rejection, when set, explains why the previous answer was refused.
func ComposePrompt(
	ctx context.Context,
	ps prompts.System,
	stage prompts.Stage,
	p *policy.Policy,
	rules Rules,
	c *timeline.Case,
	s signals.Summary,
	rejection string,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	payload, err := json.MarshalIndent(newCaseView(c, s), "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize case: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	fmt.Fprintf(&sb, "\n\nFirm policy (version %s):\n\n", p.Version)
	sb.WriteString(p.Text)
	if table := rules.Describe(); table != "" {
		sb.WriteString("\n\nAllowed recommendations by label:\n\n")
		sb.WriteString(table)
	}
	sb.WriteString("\n\nCase data:\n\n")
	sb.Write(payload)

	if rejection != "" {
		sb.WriteString("\n\nPrevious response rejected: ")
		sb.WriteString(rejection)
	}

	return sb.String(), nil
}
