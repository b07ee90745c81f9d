// Package workflowtest provides in-memory collaborators for exercising the
// case workflow without a document store or reasoning service.
package workflowtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/policy"
	"github.com/JaimeStill/auditor/internal/prompts"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/internal/workflow"
)

// Source serves documents from memory. Ids absent from Docs fail to read.
type Source struct {
	Docs map[string]string
}

func (s Source) List(_ context.Context, location string) ([]string, error) {
	var ids []string
	for id := range s.Docs {
		if strings.HasPrefix(id, location) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	if len(ids) == 0 {
		return nil, documents.ErrNoDocuments
	}
	return ids, nil
}

func (s Source) Read(_ context.Context, id string) (timeline.RawDocument, error) {
	text, ok := s.Docs[id]
	if !ok {
		return timeline.RawDocument{}, timeline.Unreadable(id, documents.ErrNotFound)
	}
	return timeline.RawDocument{ID: id, Pages: []string{text}}, nil
}

// Reasoner answers every call with Reply and counts calls.
type Reasoner struct {
	Reply func(ctx context.Context, prompt string) (string, error)

	mu    sync.Mutex
	calls int
}

func (r *Reasoner) Chat(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.Reply(ctx, prompt)
}

// Calls returns the number of Chat calls made so far.
func (r *Reasoner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Answer is a well-formed reasoning service response.
type Answer struct {
	Label          string `json:"label"`
	Recommendation string `json:"recommendation"`
	NoticeType     string `json:"notice_type"`
	FirmFault      string `json:"firm_fault"`
	Rationale      string `json:"rationale"`
}

// JSON renders the answer as the service would.
func (a Answer) JSON() string {
	data, err := json.Marshal(a)
	if err != nil {
		panic(fmt.Sprintf("marshal answer: %v", err))
	}
	return string(data)
}

// Normal is a cordial-case answer.
var Normal = Answer{
	Label:          "Normal",
	Recommendation: "Continue",
	NoticeType:     "None",
	FirmFault:      "No",
	Rationale:      "Routine communication only.",
}

// Document returns a parseable case export whose single timeline event
// carries content.
func Document(client, content string) string {
	return fmt.Sprintf("Client: %s\nStatus: Active\n\nTimeline\n03/01/2025 %s\n", client, content)
}

// Policy is the policy document test runtimes load. Delinquent labels
// require a notice or escalation.
const Policy = `---
version: "test"
recommendations:
  Delinquent: [Cure, Terminate, ExecutiveReview]
  Delinquent+Special: [Cure, Terminate, ExecutiveReview]
---
Classify represented-party conduct.`

// Runtime assembles a workflow runtime with default configuration around
// src and r. Retries back off for at most a few milliseconds.
func Runtime(t testing.TB, src documents.Source, r classifications.Reasoner, cfg classifications.Config) *workflow.Runtime {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var pc timeline.Config
	if err := pc.Finalize(nil); err != nil {
		t.Fatalf("timeline config: %v", err)
	}

	var sc signals.Config
	if err := sc.Finalize(); err != nil {
		t.Fatalf("signals config: %v", err)
	}
	extractor, err := signals.New(sc)
	if err != nil {
		t.Fatalf("signals.New: %v", err)
	}

	if cfg.InitialBackoff == "" {
		cfg.InitialBackoff = "1ms"
	}
	if cfg.MaxBackoff == "" {
		cfg.MaxBackoff = "2ms"
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("engine config: %v", err)
	}

	ps, err := prompts.New(&prompts.Config{}, logger)
	if err != nil {
		t.Fatalf("prompts.New: %v", err)
	}
	p, err := policy.Parse("policy.md", []byte(Policy))
	if err != nil {
		t.Fatalf("policy.Parse: %v", err)
	}

	engine, err := classifications.NewEngine(r, ps, p, &cfg, logger)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	return &workflow.Runtime{
		Source:  src,
		Parser:  timeline.NewParser(pc),
		Signals: extractor,
		Engine:  engine,
		Logger:  logger,
	}
}
