// Package config loads the auditor configuration from TOML files and
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/auditor/internal/classifications"
	"github.com/JaimeStill/auditor/internal/documents"
	"github.com/JaimeStill/auditor/internal/prompts"
	"github.com/JaimeStill/auditor/internal/report"
	"github.com/JaimeStill/auditor/internal/runs"
	"github.com/JaimeStill/auditor/internal/signals"
	"github.com/JaimeStill/auditor/internal/timeline"
	"github.com/JaimeStill/auditor/pkg/storage"
)

const (
	BaseConfigFile       = "auditor.toml"
	OverlayConfigPattern = "auditor.%s.toml"

	EnvAuditorEnv             = "AUDITOR_ENV"
	EnvAuditorShutdownTimeout = "AUDITOR_SHUTDOWN_TIMEOUT"
	EnvAuditorVersion         = "AUDITOR_VERSION"
	EnvPolicyPath             = "AUDITOR_POLICY_PATH"
	EnvPromptsDir             = "AUDITOR_PROMPTS_DIR"
)

var parserEnv = &timeline.Env{
	MinContentLength: "AUDITOR_PARSER_MIN_CONTENT_LENGTH",
	MaxContentLength: "AUDITOR_PARSER_MAX_CONTENT_LENGTH",
	HeaderScanLines:  "AUDITOR_PARSER_HEADER_SCAN_LINES",
}

var engineEnv = &classifications.Env{
	CallTimeout:    "AUDITOR_ENGINE_CALL_TIMEOUT",
	CaseTimeout:    "AUDITOR_ENGINE_CASE_TIMEOUT",
	MaxAttempts:    "AUDITOR_ENGINE_MAX_ATTEMPTS",
	InitialBackoff: "AUDITOR_ENGINE_INITIAL_BACKOFF",
	MaxBackoff:     "AUDITOR_ENGINE_MAX_BACKOFF",
}

var runEnv = &runs.Env{
	Concurrency: "AUDITOR_RUN_CONCURRENCY",
}

var sourceEnv = &documents.Env{
	Kind:            "AUDITOR_SOURCE_KIND",
	Prefix:          "AUDITOR_SOURCE_PREFIX",
	MaxDocumentSize: "AUDITOR_SOURCE_MAX_DOCUMENT_SIZE",
}

var storageEnv = &storage.Env{
	ContainerName:    "AUDITOR_STORAGE_CONTAINER_NAME",
	ConnectionString: "AUDITOR_STORAGE_CONNECTION_STRING",
	ServiceURL:       "AUDITOR_STORAGE_SERVICE_URL",
	MaxListSize:      "AUDITOR_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "AUDITOR_STORAGE_MAX_RETRIES",
}

var reportEnv = &report.Env{
	Format:    "AUDITOR_REPORT_FORMAT",
	Path:      "AUDITOR_REPORT_PATH",
	UploadKey: "AUDITOR_REPORT_UPLOAD_KEY",
}

// PolicyConfig locates the policy document.
type PolicyConfig struct {
	Path string `toml:"path"`
}

// Config is the root configuration for the auditor.
type Config struct {
	Agent           gaconfig.AgentConfig   `toml:"-"`
	Policy          PolicyConfig           `toml:"policy"`
	Prompts         prompts.Config         `toml:"prompts"`
	Parser          timeline.Config        `toml:"parser"`
	Signals         signals.Config         `toml:"signals"`
	Engine          classifications.Config `toml:"engine"`
	Run             runs.Config            `toml:"run"`
	Source          documents.Config       `toml:"source"`
	Storage         storage.Config         `toml:"storage"`
	Report          report.Config          `toml:"report"`
	Logging         LoggingConfig          `toml:"logging"`
	ShutdownTimeout string                 `toml:"shutdown_timeout"`
	Version         string                 `toml:"version"`
}

// agentTable holds the raw [agent] table. go-agents types carry JSON
// tags, so the table is re-decoded through encoding/json.
type agentTable struct {
	Agent map[string]any `toml:"agent"`
}

// Env returns the AUDITOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAuditorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the configuration with Read and finalizes all values.
// Every failure is a *ConfigurationError.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads the base config at path (or auditor.toml in the working
// directory when path is empty and the file exists) and merges the
// AUDITOR_ENV overlay found beside it. Values are not finalized, so
// callers needing only some sections can finalize those alone.
func Read(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(BaseConfigFile); err == nil {
			path = BaseConfigFile
		}
	}

	if path != "" {
		loaded, err := load(path)
		if err != nil {
			return nil, Invalid(path, err)
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, Invalid(overlay, fmt.Errorf("load overlay: %w", err))
		}
		cfg.Merge(o)
	}

	return cfg, nil
}

// FinalizeParsing finalizes only the sections needed to parse documents
// and extract signals without classifying them.
func (c *Config) FinalizeParsing() error {
	if err := c.Parser.Finalize(parserEnv); err != nil {
		return Invalid("parser", err)
	}
	if err := c.Signals.Finalize(); err != nil {
		return Invalid("signals", err)
	}
	if err := c.Source.Finalize(sourceEnv); err != nil {
		return Invalid("source", err)
	}
	return Invalid("logging", c.Logging.Finalize())
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Policy.Path != "" {
		c.Policy.Path = overlay.Policy.Path
	}
	c.Agent.Merge(&overlay.Agent)
	c.Prompts.Merge(&overlay.Prompts)
	c.Parser.Merge(&overlay.Parser)
	c.Signals.Merge(&overlay.Signals)
	c.Engine.Merge(&overlay.Engine)
	c.Run.Merge(&overlay.Run)
	c.Source.Merge(&overlay.Source)
	c.Storage.Merge(&overlay.Storage)
	c.Report.Merge(&overlay.Report)
	c.Logging.Merge(&overlay.Logging)
}

// Finalize applies defaults and environment overrides to every section
// and validates the result.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		field string
		fn    func() error
	}{
		{"agent", func() error { return FinalizeAgent(&c.Agent) }},
		{"parser", func() error { return c.Parser.Finalize(parserEnv) }},
		{"signals", c.Signals.Finalize},
		{"engine", func() error { return c.Engine.Finalize(engineEnv) }},
		{"run", func() error { return c.Run.Finalize(runEnv) }},
		{"source", func() error { return c.Source.Finalize(sourceEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"report", func() error { return c.Report.Finalize(reportEnv) }},
		{"logging", c.Logging.Finalize},
	}
	for _, s := range sections {
		if err := s.fn(); err != nil {
			return Invalid(s.field, err)
		}
	}

	if c.Source.Kind == documents.KindBlob && !c.Storage.Configured() {
		return Invalid("storage", fmt.Errorf("%w: blob source needs connection_string or service_url", ErrInvalid))
	}
	if c.Report.UploadKey != "" && !c.Storage.Configured() {
		return Invalid("report.upload_key", fmt.Errorf("%w: upload needs storage", ErrInvalid))
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAuditorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAuditorVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvPolicyPath); v != "" {
		c.Policy.Path = v
	}
	if v := os.Getenv(EnvPromptsDir); v != "" {
		c.Prompts.Dir = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return Invalid("shutdown_timeout", err)
	}
	if strings.TrimSpace(c.Policy.Path) == "" {
		return Invalid("policy.path", ErrMissingPolicy)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var t agentTable
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if t.Agent != nil {
		raw, err := json.Marshal(t.Agent)
		if err != nil {
			return nil, fmt.Errorf("parse agent: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg.Agent); err != nil {
			return nil, fmt.Errorf("parse agent: %w", err)
		}
	}
	cfg.resolve(filepath.Dir(path))

	return &cfg, nil
}

// resolve anchors relative file paths at dir, the directory holding the
// config file.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Policy.Path, &c.Prompts.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func overlayPath(base string) string {
	env := os.Getenv(EnvAuditorEnv)
	if env == "" {
		return ""
	}
	dir := "."
	if base != "" {
		dir = filepath.Dir(base)
	}
	path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
