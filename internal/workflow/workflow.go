// Package workflow drives a single case through its lifecycle:
// read, parse, extract signals, classify. Each case runs as its own
// state graph and always ends in a terminal CaseState.
package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

// Execute runs the workflow for the document id. Per-document failures are
// reported through Outcome.Err with a failed State; the returned error is
// reserved for faults in the graph itself.
//
// The graph executes on a context detached from ctx so a run cancellation
// cannot strand a case mid-transition. ctx still reaches the classify node,
// which stops issuing new reasoning calls once it is cancelled.
func Execute(ctx context.Context, rt *Runtime, id string) (*Outcome, error) {
	graph, err := buildGraph(rt, ctx)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil)
	initial = initial.Set(KeyDocumentID, id)
	initial = initial.Set(KeyCaseState, StatePending)

	final, err := graph.Execute(context.WithoutCancel(ctx), initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractOutcome(final)
}

func buildGraph(rt *Runtime, runCtx context.Context) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("auditor-case")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"read", ReadNode(rt)},
		{"parse", ParseNode(rt)},
		{"signals", SignalsNode(rt)},
		{"classify", ClassifyNode(rt, runCtx)},
		{"done", DoneNode()},
	}
	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	edges := []struct {
		from, to string
		pred     func(state.State) bool
	}{
		{"read", "parse", state.Not(failed)},
		{"read", "done", failed},
		{"parse", "signals", state.Not(failed)},
		{"parse", "done", failed},
		{"signals", "classify", nil},
		{"classify", "done", nil},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e.from, e.to, e.pred); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint("read"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("done"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractOutcome(s state.State) (*Outcome, error) {
	id, err := get[string](s, KeyDocumentID)
	if err != nil {
		return nil, err
	}
	cs, err := get[CaseState](s, KeyCaseState)
	if err != nil {
		return nil, err
	}
	if !cs.Terminal() {
		return nil, fmt.Errorf("%w: case %s ended in %s", ErrIncompleteState, id, cs)
	}

	out := &Outcome{DocumentID: id, State: cs}

	if c, err := get[*timeline.Case](s, KeyCase); err == nil {
		out.Case = c
	}
	if sum, err := get[signals.Summary](s, KeySignals); err == nil {
		out.Signals = &sum
	}

	if cs.Failed() {
		out.Err, err = get[error](s, KeyError)
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	out.Result, err = get[*classifications.Result](s, KeyResult)
	if err != nil {
		return nil, err
	}
	return out, nil
}
