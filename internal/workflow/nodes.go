package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

// ReadNode returns a state node that fetches the raw document text from
// the runtime's source.
func ReadNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		id, err := get[string](s, KeyDocumentID)
		if err != nil {
			return s, fmt.Errorf("read: %w", err)
		}

		s = transition(ctx, rt, s, id, StateParsing, nil)

		doc, err := rt.Source.Read(ctx, id)
		if err != nil {
			return fail(ctx, rt, s, id, StateExtractionFailed, err), nil
		}

		return s.Set(KeyRaw, doc), nil
	})
}

// ParseNode returns a state node that turns the raw document into a Case.
func ParseNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		id, err := get[string](s, KeyDocumentID)
		if err != nil {
			return s, fmt.Errorf("parse: %w", err)
		}
		doc, err := get[timeline.RawDocument](s, KeyRaw)
		if err != nil {
			return s, fmt.Errorf("parse: %w", err)
		}

		c, err := rt.Parser.Parse(doc)
		if err != nil {
			return fail(ctx, rt, s, id, StateExtractionFailed, err), nil
		}

		rt.Logger.DebugContext(
			ctx, "case parsed",
			"document_id", id,
			"case_id", c.CaseID(),
			"event_count", len(c.Events),
		)

		s = s.Set(KeyCase, c)
		return transition(ctx, rt, s, id, StateParsed, nil), nil
	})
}

// SignalsNode returns a state node that computes the deterministic
// signal summary for the parsed case.
func SignalsNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		c, err := get[*timeline.Case](s, KeyCase)
		if err != nil {
			return s, fmt.Errorf("signals: %w", err)
		}

		summary := rt.Signals.Extract(c)

		rt.Logger.DebugContext(
			ctx, "signals extracted",
			"document_id", c.DocumentID,
			"flagged", summary.Flagged(),
		)

		return s.Set(KeySignals, summary), nil
	})
}

// ClassifyNode returns a state node that runs the classification engine.
// runCtx is the run-level context: its cancellation stops new attempts,
// while the graph itself executes detached so the case always reaches a
// terminal state.
func ClassifyNode(rt *Runtime, runCtx context.Context) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		c, err := get[*timeline.Case](s, KeyCase)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}
		summary, err := get[signals.Summary](s, KeySignals)
		if err != nil {
			return s, fmt.Errorf("classify: %w", err)
		}

		s = transition(ctx, rt, s, c.DocumentID, StateClassifying, nil)

		result, err := rt.Engine.Classify(runCtx, c, summary)
		if err != nil {
			return fail(ctx, rt, s, c.DocumentID, StateClassificationFailed, err), nil
		}

		s = s.Set(KeyResult, result)
		return transition(ctx, rt, s, c.DocumentID, StateClassified, nil), nil
	})
}

// DoneNode is the exit point. It performs no work.
func DoneNode() state.StateNode {
	return state.NewFunctionNode(func(_ context.Context, s state.State) (state.State, error) {
		return s, nil
	})
}

func fail(ctx context.Context, rt *Runtime, s state.State, id string, cs CaseState, err error) state.State {
	s = s.Set(KeyError, err)
	return transition(ctx, rt, s, id, cs, err)
}

func transition(ctx context.Context, rt *Runtime, s state.State, id string, cs CaseState, err error) state.State {
	if err != nil {
		rt.Logger.WarnContext(ctx, "case transition", "document_id", id, "state", cs, "error", err)
	} else {
		rt.Logger.InfoContext(ctx, "case transition", "document_id", id, "state", cs)
	}
	return s.Set(KeyCaseState, cs)
}

func failed(s state.State) bool {
	_, ok := s.Get(KeyError)
	return ok
}

func get[T any](s state.State, key string) (T, error) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: missing %s", ErrIncompleteState, key)
	}
	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrIncompleteState, key, val)
	}
	return v, nil
}
