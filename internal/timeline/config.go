package timeline

import (
	"fmt"
	"os"
	"strconv"
)

// Config tunes the parser heuristics.
type Config struct {
	// MinContentLength is the floor below which event content is never
	// truncated.
	MinContentLength int `toml:"min_content_length"`
	// MaxContentLength truncates event content when positive.
	MaxContentLength int `toml:"max_content_length"`
	// HeaderScanLines bounds the metadata search when the document has
	// no recognizable timeline header.
	HeaderScanLines int `toml:"header_scan_lines"`
}

// Env maps config fields to environment variable names.
type Env struct {
	MinContentLength string
	MaxContentLength string
	HeaderScanLines  string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MinContentLength != 0 {
		c.MinContentLength = overlay.MinContentLength
	}
	if overlay.MaxContentLength != 0 {
		c.MaxContentLength = overlay.MaxContentLength
	}
	if overlay.HeaderScanLines != 0 {
		c.HeaderScanLines = overlay.HeaderScanLines
	}
}

func (c *Config) loadDefaults() {
	if c.MinContentLength == 0 {
		c.MinContentLength = 280
	}
	if c.HeaderScanLines == 0 {
		c.HeaderScanLines = 40
	}
}

func (c *Config) loadEnv(env *Env) {
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt(env.MinContentLength, &c.MinContentLength)
	setInt(env.MaxContentLength, &c.MaxContentLength)
	setInt(env.HeaderScanLines, &c.HeaderScanLines)
}

func (c *Config) validate() error {
	if c.MinContentLength < 0 {
		return fmt.Errorf("min_content_length must not be negative")
	}
	if c.MaxContentLength < 0 {
		return fmt.Errorf("max_content_length must not be negative")
	}
	if c.HeaderScanLines < 1 {
		return fmt.Errorf("header_scan_lines must be positive")
	}
	return nil
}
