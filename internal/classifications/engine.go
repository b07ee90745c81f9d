package classifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/JaimeStill/auditor/internal/policy"
	"github.com/JaimeStill/auditor/internal/prompts"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/pkg/formatting"
)

// Engine classifies parsed cases. It holds no per-case state and is safe
// for concurrent use.
type Engine struct {
	reasoner Reasoner
	prompts  prompts.System
	policy   *policy.Policy
	rules    Rules
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates an Engine. cfg must already be finalized.
func NewEngine(
	r Reasoner,
	ps prompts.System,
	p *policy.Policy,
	cfg *Config,
	logger *slog.Logger,
) (*Engine, error) {
	if r == nil {
		return nil, ErrNoReasoner
	}
	if p == nil || p.Text == "" {
		return nil, ErrNoPolicy
	}

	rules, err := NewRules(p.Recommendations)
	if err != nil {
		return nil, err
	}

	return &Engine{
		reasoner: r,
		prompts:  ps,
		policy:   p,
		rules:    rules,
		cfg:      *cfg,
		logger:   logger.With("system", "classifications"),
		now:      time.Now,
	}, nil
}

// PolicyVersion returns the version of the policy the engine applies.
func (e *Engine) PolicyVersion() string {
	return e.policy.Version
}

// Classify calls the reasoning service for c and validates the answer.
// Every failed attempt is retried with exponential backoff up to the
// configured limit. Cancelling ctx stops further attempts but never
// interrupts a call already in flight; the case timeout bounds the whole
// exchange either way.
func (e *Engine) Classify(ctx context.Context, c *timeline.Case, s signals.Summary) (*Result, error) {
	caseCtx, cancelCase := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.CaseTimeoutDuration())
	defer cancelCase()

	stopCtx, stop := context.WithCancelCause(caseCtx)
	defer stop(nil)
	release := context.AfterFunc(ctx, func() { stop(ErrCanceled) })
	defer release()

	var (
		attempts  int
		lastErr   error
		rejection string
	)

	operation := func() (*Result, error) {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ErrCanceled)
		}
		if stopCtx.Err() != nil {
			return nil, backoff.Permanent(context.Cause(stopCtx))
		}
		attempts++

		stage := prompts.StageClassify
		if rejection != "" {
			stage = prompts.StageRetry
		}

		prompt, err := ComposePrompt(caseCtx, e.prompts, stage, e.policy, e.rules, c, s, rejection)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		result, err := e.attempt(caseCtx, c, s, prompt)
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidLabel) || errors.Is(err, ErrInconsistent) {
				rejection = err.Error()
			}
			return nil, err
		}
		return result, nil
	}

	notify := func(err error, wait time.Duration) {
		e.logger.WarnContext(
			ctx, "classification attempt failed",
			"document_id", c.DocumentID,
			"attempt", attempts,
			"backoff", wait,
			"error", err,
		)
	}

	result, err := backoff.RetryNotifyWithData(operation, e.backoff(stopCtx), notify)
	if err != nil {
		return nil, &ClassificationError{
			DocumentID: c.DocumentID,
			Attempts:   attempts,
			Cause:      cause(ctx, stopCtx, lastErr, err),
		}
	}

	result.PolicyVersion = e.policy.Version
	result.Attempts = attempts
	result.ClassifiedAt = e.now().UTC()
	if d, ok := e.reasoner.(describer); ok {
		result.Model = d.Model()
		result.Provider = d.Provider()
	}

	e.logger.InfoContext(
		ctx, "case classified",
		"document_id", c.DocumentID,
		"label", result.Label,
		"recommendation", result.Recommendation,
		"attempts", attempts,
		"overrides", len(result.Overrides),
		"dropped_quotes", result.DroppedQuotes,
	)

	return result, nil
}

func (e *Engine) attempt(ctx context.Context, c *timeline.Case, s signals.Summary, prompt string) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeoutDuration())
	defer cancel()

	content, err := e.reasoner.Chat(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	resp, err := formatting.Parse[response](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return validate(c, s, e.rules, resp)
}

func (e *Engine) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.InitialBackoffDuration()
	b.MaxInterval = e.cfg.MaxBackoffDuration()
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(backoff.WithContext(b, ctx), uint64(e.cfg.MaxAttempts-1))
}

// cause picks the error reported for a failed case: the last attempt's
// failure, qualified by cancellation or the case timeout when either cut
// the retries short.
func cause(ctx, stopCtx context.Context, lastErr, retryErr error) error {
	stopped := context.Cause(stopCtx)
	if ctx.Err() != nil {
		stopped = ErrCanceled
	}

	switch {
	case lastErr == nil && errors.Is(stopped, ErrCanceled):
		return ErrCanceled
	case lastErr == nil && stopped != nil:
		return fmt.Errorf("%w: %w", ErrTimeout, stopped)
	case lastErr == nil:
		return retryErr
	case errors.Is(stopped, ErrCanceled):
		return fmt.Errorf("%w: %w", ErrCanceled, lastErr)
	case errors.Is(stopped, context.DeadlineExceeded) && !errors.Is(lastErr, ErrTimeout):
		return fmt.Errorf("%w: case budget exhausted: %w", ErrTimeout, lastErr)
	}
	return lastErr
}
