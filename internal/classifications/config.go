package classifications

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config bounds the reasoning calls made for each case. Durations use
// time.ParseDuration syntax.
type Config struct {
	CallTimeout    string `toml:"call_timeout"`
	CaseTimeout    string `toml:"case_timeout"`
	MaxAttempts    int    `toml:"max_attempts"`
	InitialBackoff string `toml:"initial_backoff"`
	MaxBackoff     string `toml:"max_backoff"`
}

// Env maps config fields to environment variable names.
type Env struct {
	CallTimeout    string
	CaseTimeout    string
	MaxAttempts    string
	InitialBackoff string
	MaxBackoff     string
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
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.CaseTimeout != "" {
		c.CaseTimeout = overlay.CaseTimeout
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.InitialBackoff != "" {
		c.InitialBackoff = overlay.InitialBackoff
	}
	if overlay.MaxBackoff != "" {
		c.MaxBackoff = overlay.MaxBackoff
	}
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *Config) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
}

// CaseTimeoutDuration returns CaseTimeout as a time.Duration.
func (c *Config) CaseTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CaseTimeout)
	return d
}

// InitialBackoffDuration returns InitialBackoff as a time.Duration.
func (c *Config) InitialBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.InitialBackoff)
	return d
}

// MaxBackoffDuration returns MaxBackoff as a time.Duration.
func (c *Config) MaxBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxBackoff)
	return d
}

func (c *Config) loadDefaults() {
	if c.CallTimeout == "" {
		c.CallTimeout = "90s"
	}
	if c.CaseTimeout == "" {
		c.CaseTimeout = "5m"
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff == "" {
		c.InitialBackoff = "2s"
	}
	if c.MaxBackoff == "" {
		c.MaxBackoff = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setString(env.CallTimeout, &c.CallTimeout)
	setString(env.CaseTimeout, &c.CaseTimeout)
	setString(env.InitialBackoff, &c.InitialBackoff)
	setString(env.MaxBackoff, &c.MaxBackoff)

	if env.MaxAttempts != "" {
		if v := os.Getenv(env.MaxAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAttempts = n
			}
		}
	}
}

func (c *Config) validate() error {
	durations := []struct {
		name  string
		value string
	}{
		{"call_timeout", c.CallTimeout},
		{"case_timeout", c.CaseTimeout},
		{"initial_backoff", c.InitialBackoff},
		{"max_backoff", c.MaxBackoff},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.InitialBackoffDuration() > c.MaxBackoffDuration() {
		return fmt.Errorf("initial_backoff must not exceed max_backoff")
	}
	return nil
}
