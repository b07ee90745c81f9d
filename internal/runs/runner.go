// Package runs schedules the case workflow over a set of documents and
// aggregates the outcomes into a report.
package runs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/workflow"
)

// Runner processes documents through the case workflow with bounded
// concurrency.
type Runner struct {
	rt     *workflow.Runtime
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. cfg must already be finalized.
func NewRunner(rt *workflow.Runtime, cfg *Config, logger *slog.Logger) *Runner {
	return &Runner{
		rt:     rt,
		cfg:    *cfg,
		logger: logger.With("system", "runs"),
		now:    time.Now,
	}
}

// Run processes ids and returns the run report. Per-document failures are
// recorded in the report, never returned. Cancelling ctx stops scheduling
// new cases and new reasoning calls; cases already classifying finish and
// are kept, and every case that never ran is recorded as canceled.
func (r *Runner) Run(ctx context.Context, ids []string) (*Report, error) {
	if len(ids) == 0 {
		return nil, ErrNoDocuments
	}

	report := &Report{
		RunID:         uuid.New(),
		PolicyVersion: r.rt.Engine.PolicyVersion(),
		StartedAt:     r.now().UTC(),
	}

	r.logger.InfoContext(
		ctx, "run started",
		"run_id", report.RunID,
		"documents", len(ids),
		"concurrency", r.cfg.Concurrency,
		"policy_version", report.PolicyVersion,
	)

	agg := NewAggregator(len(ids))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)

	for i, id := range ids {
		if ctx.Err() != nil {
			agg.Fail(i, id, StageNotStarted, classifications.ErrCanceled)
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				agg.Fail(i, id, StageNotStarted, classifications.ErrCanceled)
				return nil
			}

			out, err := workflow.Execute(ctx, r.rt, id)
			if err != nil {
				r.logger.ErrorContext(ctx, "workflow failed", "document_id", id, "error", err)
				agg.Fail(i, id, StageWorkflow, err)
				return nil
			}

			agg.Record(i, out)
			return nil
		})
	}

	_ = g.Wait()

	report.Results, report.Failures, report.Summary = agg.Collect()
	report.CompletedAt = r.now().UTC()
	report.Canceled = ctx.Err() != nil

	r.logger.InfoContext(
		ctx, "run completed",
		"run_id", report.RunID,
		"total", report.Summary.Total,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"canceled", report.Canceled,
		"duration", report.CompletedAt.Sub(report.StartedAt),
	)

	return report, nil
}
