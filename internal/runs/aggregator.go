package runs

import (
	"errors"
	"sync"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/workflow"
)

type slot struct {
	result  *classifications.Result
	failure *Failure
}

// Aggregator collects per-case outcomes as they complete. Each outcome is
// stored at its input position, so completion order never affects the
// final ordering. It is safe for concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	slots []slot
}

// NewAggregator creates an Aggregator for a run over total documents.
func NewAggregator(total int) *Aggregator {
	return &Aggregator{slots: make([]slot, total)}
}

// Record stores a terminal workflow outcome at position.
func (a *Aggregator) Record(position int, out *workflow.Outcome) {
	if out.Result != nil {
		a.mu.Lock()
		a.slots[position] = slot{result: out.Result}
		a.mu.Unlock()
		return
	}

	stage := out.State.Stage()
	if stage == "" {
		stage = StageWorkflow
	}
	f := failure(position, out.DocumentID, stage, out.Err)
	if out.Case != nil {
		f.ClientName = out.Case.Metadata.ClientName
	}

	a.mu.Lock()
	a.slots[position] = slot{failure: &f}
	a.mu.Unlock()
}

// Fail stores a failure for a document that never produced an outcome.
func (a *Aggregator) Fail(position int, id, stage string, err error) {
	f := failure(position, id, stage, err)

	a.mu.Lock()
	a.slots[position] = slot{failure: &f}
	a.mu.Unlock()
}

// Collect returns the results and failures in input order together with
// their summary. Positions that were never recorded count as failures.
func (a *Aggregator) Collect() ([]classifications.Result, []Failure, Summary) {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary := newSummary(len(a.slots))
	results := make([]classifications.Result, 0, len(a.slots))
	failures := make([]Failure, 0)

	for i, s := range a.slots {
		switch {
		case s.result != nil:
			results = append(results, *s.result)
			summary.add(s.result)
		case s.failure != nil:
			failures = append(failures, *s.failure)
		default:
			failures = append(failures, failure(i, "", StageWorkflow, errMissingOutcome))
		}
	}
	summary.Failed = len(failures)

	return results, failures, summary
}

var errMissingOutcome = errors.New("no outcome recorded")

func failure(position int, id, stage string, err error) Failure {
	if err == nil {
		err = errMissingOutcome
	}
	return Failure{
		Position:   position,
		DocumentID: id,
		Stage:      stage,
		Cause:      err.Error(),
		Err:        err,
	}
}
