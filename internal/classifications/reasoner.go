package classifications

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Reasoner is the external reasoning service. Implementations must honor
// ctx cancellation and deadlines.
type Reasoner interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// describer is implemented by reasoners that can name their model and
// provider for the audit trail.
type describer interface {
	Model() string
	Provider() string
}

// AgentReasoner sends prompts through a go-agents agent. A fresh agent is
// created per call so concurrent cases share no client state.
type AgentReasoner struct {
	cfg gaconfig.AgentConfig
}

// NewAgentReasoner checks that an agent can be built from cfg.
func NewAgentReasoner(cfg gaconfig.AgentConfig) (*AgentReasoner, error) {
	if _, err := agent.New(&cfg); err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &AgentReasoner{cfg: cfg}, nil
}

func (r *AgentReasoner) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&r.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

func (r *AgentReasoner) Model() string {
	if r.cfg.Model == nil {
		return ""
	}
	return r.cfg.Model.Name
}

func (r *AgentReasoner) Provider() string {
	if r.cfg.Provider == nil {
		return ""
	}
	return r.cfg.Provider.Name
}
