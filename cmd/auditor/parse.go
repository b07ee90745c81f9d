package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/auditor/internal/config"
	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/infrastructure"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the parsed case and its signals as JSON",
	Long: `Parse a single case document and print the extracted metadata, timeline
events and deterministic signal summary as JSON. No reasoning service is
called and no policy is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

type parseOutput struct {
	Case    *timeline.Case  `json:"case"`
	Signals signals.Summary `json:"signals"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(rootFlags.config)
	if err != nil {
		return err
	}
	cfg.Source.Kind = documents.KindFile
	if err := cfg.FinalizeParsing(); err != nil {
		return err
	}

	logger := infrastructure.NewLogger(&cfg.Logging, cmd.ErrOrStderr())

	doc, err := documents.NewFileSource(&cfg.Source, logger).Read(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	c, err := timeline.NewParser(cfg.Parser).Parse(doc)
	if err != nil {
		return err
	}

	extractor, err := signals.New(cfg.Signals)
	if err != nil {
		return config.Invalid("signals", err)
	}

	return writeJSON(cmd.OutOrStdout(), parseOutput{Case: c, Signals: extractor.Extract(c)})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
