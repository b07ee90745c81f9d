package workflow

import (
	"log/slog"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed once per run and shared by every case; none of its
// members hold per-case state.
type Runtime struct {
	Source  documents.Source
	Parser  *timeline.Parser
	Signals *signals.Extractor
	Engine  *classifications.Engine
	Logger  *slog.Logger
}
