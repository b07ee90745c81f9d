package prompts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// System resolves the prompt text for each stage.
type System interface {
	// Instructions returns the override for stage when one is loaded,
	// otherwise the default instructions.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the response specification for stage.
	Spec(ctx context.Context, stage Stage) (string, error)
	// Overrides lists the loaded instruction overrides.
	Overrides() []Override
}

// Config locates instruction override files. Dir may hold one
// "<stage>.md" file per stage; stages without a file use the defaults.
type Config struct {
	Dir string `toml:"dir"`
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
}

type system struct {
	overrides map[Stage]Override
	logger    *slog.Logger
}

// New loads any override files from cfg.Dir. A missing directory is not
// an error; an empty override file is.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	s := &system{
		overrides: make(map[Stage]Override),
		logger:    logger.With("system", "prompts"),
	}

	if cfg == nil || cfg.Dir == "" {
		return s, nil
	}

	for _, stage := range stages {
		path := filepath.Join(cfg.Dir, string(stage)+".md")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s override: %w", stage, err)
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyOverride, path)
		}

		s.overrides[stage] = Override{Stage: stage, Instructions: text, Source: path}
		s.logger.Info("prompt override loaded", "stage", stage, "source", path)
	}

	return s, nil
}

func (s *system) Instructions(ctx context.Context, stage Stage) (string, error) {
	if o, ok := s.overrides[stage]; ok {
		return o.Instructions, nil
	}
	return Instructions(stage)
}

func (s *system) Spec(ctx context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

func (s *system) Overrides() []Override {
	out := make([]Override, 0, len(s.overrides))
	for _, stage := range stages {
		if o, ok := s.overrides[stage]; ok {
			out = append(out, o)
		}
	}
	return out
}
