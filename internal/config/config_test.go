package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/auditor/internal/config"
	"github.com/JaimeStill/auditor/internal/documents"
)

const baseConfig = `
shutdown_timeout = "45s"

[policy]
path = "policy/conduct.md"

[prompts]
dir = "prompts"

[agent]
name = "auditor"

[agent.provider]
name = "ollama"
base_url = "http://localhost:11434"

[agent.model]
name = "llama3.1:8b"

[parser]
max_content_length = 2000

[signals]
threat = ["bar complaint", "re:sue\\s+(you|the firm)"]

[engine]
call_timeout = "60s"
max_attempts = 4

[run]
concurrency = 6

[source]
kind = "file"
max_document_size = "20MB"

[report]
path = "out/report.xlsx"

[logging]
level = "debug"
`

const overlayConfig = `
[engine]
max_attempts = 2

[run]
concurrency = 2

[logging]
format = "json"
`

func writeConfig(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "auditor.toml", baseConfig)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ShutdownTimeout != "45s" {
		t.Errorf("ShutdownTimeout = %q, want 45s", cfg.ShutdownTimeout)
	}
	if want := filepath.Join(dir, "policy/conduct.md"); cfg.Policy.Path != want {
		t.Errorf("Policy.Path = %q, want %q", cfg.Policy.Path, want)
	}
	if want := filepath.Join(dir, "prompts"); cfg.Prompts.Dir != want {
		t.Errorf("Prompts.Dir = %q, want %q", cfg.Prompts.Dir, want)
	}
	if cfg.Agent.Provider == nil || cfg.Agent.Provider.Name != "ollama" {
		t.Errorf("Agent.Provider = %+v, want ollama", cfg.Agent.Provider)
	}
	if cfg.Agent.Model == nil || cfg.Agent.Model.Name != "llama3.1:8b" {
		t.Errorf("Agent.Model = %+v, want llama3.1:8b", cfg.Agent.Model)
	}
	if cfg.Parser.MaxContentLength != 2000 || cfg.Parser.MinContentLength != 280 {
		t.Errorf("Parser = %+v", cfg.Parser)
	}
	if diff := cmp.Diff([]string{"bar complaint", `re:sue\s+(you|the firm)`}, cfg.Signals.Threat); diff != "" {
		t.Errorf("Signals.Threat mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Signals.Hostility) == 0 {
		t.Error("Signals.Hostility empty, want default markers")
	}
	if cfg.Engine.MaxAttempts != 4 || cfg.Engine.CallTimeout != "60s" || cfg.Engine.CaseTimeout != "5m" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Run.Concurrency != 6 {
		t.Errorf("Run.Concurrency = %d, want 6", cfg.Run.Concurrency)
	}
	if cfg.Source.Kind != documents.KindFile || cfg.Source.MaxDocumentSizeBytes() != 20*1024*1024 {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Report.Path != "out/report.xlsx" {
		t.Errorf("Report.Path = %q", cfg.Report.Path)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "auditor.toml", baseConfig)
	writeConfig(t, dir, "auditor.staging.toml", overlayConfig)
	t.Setenv(config.EnvAuditorEnv, "staging")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("Env() = %q, want staging", cfg.Env())
	}
	if cfg.Engine.MaxAttempts != 2 {
		t.Errorf("Engine.MaxAttempts = %d, want 2", cfg.Engine.MaxAttempts)
	}
	if cfg.Engine.CallTimeout != "60s" {
		t.Errorf("Engine.CallTimeout = %q, want base value 60s", cfg.Engine.CallTimeout)
	}
	if cfg.Run.Concurrency != 2 {
		t.Errorf("Run.Concurrency = %d, want 2", cfg.Run.Concurrency)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "auditor.toml", baseConfig)

	t.Setenv("AUDITOR_POLICY_PATH", "/etc/auditor/policy.md")
	t.Setenv("AUDITOR_ENGINE_MAX_ATTEMPTS", "5")
	t.Setenv("AUDITOR_RUN_CONCURRENCY", "12")
	t.Setenv("AUDITOR_AGENT_MODEL_NAME", "gpt-4o")
	t.Setenv("AUDITOR_LOG_LEVEL", "WARN")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Policy.Path != "/etc/auditor/policy.md" {
		t.Errorf("Policy.Path = %q", cfg.Policy.Path)
	}
	if cfg.Engine.MaxAttempts != 5 {
		t.Errorf("Engine.MaxAttempts = %d, want 5", cfg.Engine.MaxAttempts)
	}
	if cfg.Run.Concurrency != 12 {
		t.Errorf("Run.Concurrency = %d, want 12", cfg.Run.Concurrency)
	}
	if cfg.Agent.Model.Name != "gpt-4o" {
		t.Errorf("Agent.Model.Name = %q, want gpt-4o", cfg.Agent.Model.Name)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUDITOR_POLICY_PATH", "policy.md")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ShutdownTimeout != "30s" || cfg.Version != "0.1.0" {
		t.Errorf("defaults = %q/%q", cfg.ShutdownTimeout, cfg.Version)
	}
	if cfg.Agent.Name == "" {
		t.Error("Agent.Name empty, want go-agents default")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		toml  string
		env   map[string]string
		field string
		want  error
	}{
		{
			name:  "missing policy",
			toml:  "[run]\nconcurrency = 1\n",
			field: "policy.path",
			want:  config.ErrMissingPolicy,
		},
		{
			name:  "missing token",
			toml:  "[policy]\npath = \"p.md\"\n",
			env:   map[string]string{"AUDITOR_AGENT_PROVIDER_NAME": "openai"},
			field: "agent",
			want:  config.ErrMissingCredentials,
		},
		{
			name:  "blob source without storage",
			toml:  "[policy]\npath = \"p.md\"\n[source]\nkind = \"blob\"\n",
			field: "storage",
			want:  config.ErrInvalid,
		},
		{
			name:  "upload without storage",
			toml:  "[policy]\npath = \"p.md\"\n[report]\nupload_key = \"reports/r.xlsx\"\n",
			field: "report.upload_key",
			want:  config.ErrInvalid,
		},
		{
			name:  "bad engine duration",
			toml:  "[policy]\npath = \"p.md\"\n[engine]\ncall_timeout = \"soon\"\n",
			field: "engine",
		},
		{
			name:  "bad log format",
			toml:  "[policy]\npath = \"p.md\"\n[logging]\nformat = \"xml\"\n",
			field: "logging",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, t.TempDir(), "auditor.toml", tt.toml)

			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var cfgErr *config.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error type = %T, want *config.ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "auditor.toml", "[policy\npath = 1")

	_, err := config.Load(path)
	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *config.ConfigurationError", err)
	}
	if cfgErr.Field != path {
		t.Errorf("Field = %q, want %q", cfgErr.Field, path)
	}
}

func TestAgentTokenFromEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "auditor.toml", "[policy]\npath = \"p.md\"\n")
	t.Setenv("AUDITOR_AGENT_PROVIDER_NAME", "azure")
	t.Setenv("AUDITOR_AGENT_TOKEN", "secret")
	t.Setenv("AUDITOR_AGENT_DEPLOYMENT", "gpt-4o")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Agent.Provider.Options["token"] != "secret" {
		t.Errorf("token option = %v", cfg.Agent.Provider.Options["token"])
	}
	if cfg.Agent.Provider.Options["deployment"] != "gpt-4o" {
		t.Errorf("deployment option = %v", cfg.Agent.Provider.Options["deployment"])
	}
}

func TestAgentManagedIdentity(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "auditor.toml", "[policy]\npath = \"p.md\"\n")
	t.Setenv("AUDITOR_AGENT_PROVIDER_NAME", "azure")
	t.Setenv("AUDITOR_AGENT_AUTH_TYPE", "managed_identity")

	if _, err := config.Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestFinalizeParsingWithoutPolicy(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "auditor.toml", "[parser]\nheader_scan_lines = 10\n")

	cfg, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if err := cfg.FinalizeParsing(); err != nil {
		t.Fatalf("FinalizeParsing() error = %v", err)
	}
	if cfg.Parser.HeaderScanLines != 10 {
		t.Errorf("HeaderScanLines = %d, want 10", cfg.Parser.HeaderScanLines)
	}
	if cfg.Source.Kind != documents.KindFile {
		t.Errorf("Source.Kind = %q, want file", cfg.Source.Kind)
	}

	if err := cfg.Finalize(); !errors.Is(err, config.ErrMissingPolicy) {
		t.Errorf("Finalize() error = %v, want ErrMissingPolicy", err)
	}
}
