package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/auditor/internal/app"
	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/config"
	"github.com/JaimeStill/auditor/internal/infrastructure"
	"github.com/JaimeStill/auditor/pkg/lifecycle"
)

var runFlags struct {
	output      string
	format      string
	upload      string
	concurrency int
	failOnError bool
}

var runCmd = &cobra.Command{
	Use:   "run [location]",
	Short: "Classify every case document at a location",
	Long: `Classify every case document at a location and write the run report.

A location is a directory or a single file for the file source, or a key
prefix for the blob source. Without a location the configured source
prefix is used.

Examples:
  auditor run ./exports -o audit.xlsx
  auditor run ./exports/johnson.pdf --format json
  AUDITOR_SOURCE_KIND=blob auditor run cases/2026/ --upload reports/2026.xlsx -o audit.xlsx

An interrupt stops new reasoning calls; cases already in flight finish and
the report lists every case that never ran as canceled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.output, "output", "o", "", "Report path; .xlsx or .json selects the format (default: table on stdout)")
	f.StringVar(&runFlags.format, "format", "", "Report format: xlsx, json or table")
	f.StringVar(&runFlags.upload, "upload", "", "Blob key to upload the rendered report to")
	f.IntVar(&runFlags.concurrency, "concurrency", 0, "Cases processed in parallel (default from config)")
	f.BoolVar(&runFlags.failOnError, "fail-on-error", false, "Exit non-zero when any document fails")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(rootFlags.config)
	if err != nil {
		return err
	}
	if runFlags.output != "" {
		cfg.Report.Path = runFlags.output
	}
	if runFlags.format != "" {
		cfg.Report.Format = runFlags.format
	}
	if runFlags.upload != "" {
		cfg.Report.UploadKey = runFlags.upload
	}
	if runFlags.concurrency > 0 {
		cfg.Run.Concurrency = runFlags.concurrency
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	infra, err := infrastructure.New(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	infra.Lifecycle.AbortOn(os.Interrupt, syscall.SIGTERM)
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			infra.Logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	if err := infra.Start(); err != nil {
		return err
	}

	infra.Logger.Info(
		"auditor starting",
		"version", version,
		"env", cfg.Env(),
		"source", cfg.Source.Kind,
	)

	reasoner, err := classifications.NewAgentReasoner(cfg.Agent)
	if err != nil {
		return config.Invalid("agent", err)
	}

	rt := app.NewRuntime(cfg, infra)
	domain, err := app.NewDomain(rt, reasoner)
	if err != nil {
		return err
	}

	location := cfg.Source.Prefix
	if len(args) > 0 {
		location = args[0]
	}

	ctx := infra.Lifecycle.Context()
	ids, err := domain.Workflow.Source.List(ctx, location)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	report, err := domain.Runner.Run(ctx, ids)
	if err != nil {
		return err
	}

	if err := app.Publish(context.WithoutCancel(ctx), rt, report, cmd.OutOrStdout()); err != nil {
		return err
	}

	switch {
	case infra.Lifecycle.Aborted():
		return fmt.Errorf("%w: %d of %d cases classified", lifecycle.ErrAborted, report.Summary.Succeeded, report.Summary.Total)
	case runFlags.failOnError && report.Summary.Failed > 0:
		return fmt.Errorf("%d of %d documents failed", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}
