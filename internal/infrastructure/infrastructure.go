// Package infrastructure provides core service initialization for a run.
// It assembles the common dependencies (logging, lifecycle, storage) that
// domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/auditor/internal/config"
	"github.com/JaimeStill/auditor/pkg/lifecycle"
	"github.com/JaimeStill/auditor/pkg/storage"
)

// Infrastructure holds the core systems shared by every domain system.
// Storage is nil when no storage target is configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// Log output goes to w. It initializes all systems but does not start
// them; call Start separately.
func New(ctx context.Context, cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New(ctx)
	logger := NewLogger(&cfg.Logging, w)

	var store storage.System
	if cfg.Storage.Configured() {
		s, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		store = s
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
	}, nil
}

// NewLogger builds the root logger from cfg. A nil writer logs to stderr.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers infrastructure systems with the lifecycle coordinator
// and waits for their startup hooks.
func (i *Infrastructure) Start() error {
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	i.Lifecycle.WaitForStartup()
	return nil
}
