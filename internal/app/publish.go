package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JaimeStill/auditor/internal/report"
	"github.com/JaimeStill/auditor/internal/runs"
)

// Publish renders r according to the report config. The rendered report
// is written to the configured path, or to stdout when the path is empty
// or "-", and uploaded to blob storage when an upload key is set.
func Publish(ctx context.Context, rt *Runtime, r *runs.Report, stdout io.Writer) error {
	cfg := rt.Config.Report

	renderer, err := report.ForPath(cfg.Path, cfg.Format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if cfg.Path == "" || cfg.Path == "-" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create report directory: %w", err)
			}
		}
		if err := os.WriteFile(cfg.Path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		rt.Logger.InfoContext(ctx, "report written", "path", cfg.Path, "size", buf.Len())
	}

	if cfg.UploadKey != "" {
		if rt.Storage == nil {
			return fmt.Errorf("upload report: storage not configured")
		}
		exists, err := rt.Storage.Exists(ctx, cfg.UploadKey)
		if err != nil {
			return fmt.Errorf("upload report: %w", err)
		}
		if exists {
			rt.Logger.WarnContext(ctx, "replacing existing report", "key", cfg.UploadKey)
		}
		if err := rt.Storage.Upload(ctx, cfg.UploadKey, bytes.NewReader(buf.Bytes()), renderer.ContentType()); err != nil {
			return fmt.Errorf("upload report: %w", err)
		}
		rt.Logger.InfoContext(ctx, "report uploaded", "key", cfg.UploadKey)
	}

	return nil
}
