package documents

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/auditor/pkg/formatting"
)

// Source kinds.
const (
	KindFile = "file"
	KindBlob = "blob"
)

// Config selects and tunes the document source.
type Config struct {
	Kind            string   `toml:"kind"`
	Prefix          string   `toml:"prefix"`
	MaxDocumentSize string   `toml:"max_document_size"`
	Extensions      []string `toml:"extensions"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Kind            string
	Prefix          string
	MaxDocumentSize string
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
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
	if overlay.Extensions != nil {
		c.Extensions = overlay.Extensions
	}
}

// MaxDocumentSizeBytes returns MaxDocumentSize parsed into bytes.
func (c *Config) MaxDocumentSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxDocumentSize)
	return n
}

func (c *Config) loadDefaults() {
	if c.Kind == "" {
		c.Kind = KindFile
	}
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "50MB"
	}
	if c.Extensions == nil {
		c.Extensions = []string{".pdf", ".txt", ".md"}
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Kind); env.Kind != "" && v != "" {
		c.Kind = v
	}
	if v := os.Getenv(env.Prefix); env.Prefix != "" && v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(env.MaxDocumentSize); env.MaxDocumentSize != "" && v != "" {
		c.MaxDocumentSize = v
	}
}

func (c *Config) validate() error {
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	if c.Kind != KindFile && c.Kind != KindBlob {
		return fmt.Errorf("kind must be %s or %s, got %q", KindFile, KindBlob, c.Kind)
	}
	n, err := formatting.ParseBytes(c.MaxDocumentSize)
	if err != nil {
		return fmt.Errorf("invalid max_document_size: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("max_document_size must be positive")
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("empty extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	return nil
}
