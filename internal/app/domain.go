package app

import (
	"errors"
	"fmt"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/config"
	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/policy"
	"github.com/JaimeStill/auditor/internal/prompts"
	"github.com/JaimeStill/auditor/internal/runs"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/internal/workflow"
)

// Domain holds the domain systems that make up a run.
type Domain struct {
	Policy   *policy.Policy
	Prompts  prompts.System
	Workflow *workflow.Runtime
	Runner   *runs.Runner
}

// NewDomain creates all domain systems from the runtime. Any failure is a
// *config.ConfigurationError: no case can be processed without them.
func NewDomain(rt *Runtime, reasoner classifications.Reasoner) (*Domain, error) {
	cfg := rt.Config

	p, err := policy.Load(cfg.Policy.Path)
	if err != nil {
		return nil, config.Invalid("policy.path", err)
	}

	ps, err := prompts.New(&cfg.Prompts, rt.Logger)
	if err != nil {
		return nil, config.Invalid("prompts.dir", err)
	}

	source, err := NewSource(rt)
	if err != nil {
		return nil, config.Invalid("source", err)
	}

	extractor, err := signals.New(cfg.Signals)
	if err != nil {
		return nil, config.Invalid("signals", err)
	}

	engine, err := classifications.NewEngine(reasoner, ps, p, &cfg.Engine, rt.Logger)
	if errors.Is(err, classifications.ErrPolicyRules) {
		return nil, config.Invalid("policy.path", err)
	}
	if err != nil {
		return nil, config.Invalid("engine", err)
	}

	wf := &workflow.Runtime{
		Source:  source,
		Parser:  timeline.NewParser(cfg.Parser),
		Signals: extractor,
		Engine:  engine,
		Logger:  rt.Logger.With("system", "workflow"),
	}

	rt.Logger.Info(
		"domain ready",
		"policy_version", p.Version,
		"policy_source", p.Source,
		"prompt_overrides", len(ps.Overrides()),
		"source", cfg.Source.Kind,
	)

	return &Domain{
		Policy:   p,
		Prompts:  ps,
		Workflow: wf,
		Runner:   runs.NewRunner(wf, &cfg.Run, rt.Logger),
	}, nil
}

// NewSource returns the document source selected by the source config.
func NewSource(rt *Runtime) (documents.Source, error) {
	cfg := &rt.Config.Source
	switch cfg.Kind {
	case documents.KindBlob:
		if rt.Storage == nil {
			return nil, fmt.Errorf("blob source requires storage")
		}
		return documents.NewBlobSource(cfg, rt.Storage, rt.Logger), nil
	default:
		return documents.NewFileSource(cfg, rt.Logger), nil
	}
}
