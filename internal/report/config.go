package report

import (
	"fmt"
	"os"
	"strings"
)

// Config selects where and how the run report is written.
type Config struct {
	// Format is xlsx, json or table. Empty infers it from Path.
	Format string `toml:"format"`
	// Path is the output file. Empty or "-" writes to stdout.
	Path string `toml:"path"`
	// UploadKey, when set, also stores the rendered report in blob storage.
	UploadKey string `toml:"upload_key"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Format    string
	Path      string
	UploadKey string
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.UploadKey != "" {
		c.UploadKey = overlay.UploadKey
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Format); env.Format != "" && v != "" {
		c.Format = v
	}
	if v := os.Getenv(env.Path); env.Path != "" && v != "" {
		c.Path = v
	}
	if v := os.Getenv(env.UploadKey); env.UploadKey != "" && v != "" {
		c.UploadKey = v
	}
}

func (c *Config) validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case "", FormatWorkbook, FormatJSON, FormatTable:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
}
