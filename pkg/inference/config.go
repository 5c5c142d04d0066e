package inference

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds inference provider connection and tuning parameters.
// ReasoningEffort and Verbosity are defaults; task profiles may override
// them per call.
type Config struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	Model           string `toml:"model"`
	Timeout         string `toml:"timeout"`
	MaxOutputTokens int64  `toml:"max_output_tokens"`
	ReasoningEffort string `toml:"reasoning_effort"`
	Verbosity       string `toml:"verbosity"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         string
	MaxOutputTokens string
	ReasoningEffort string
	Verbosity       string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
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
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxOutputTokens != 0 {
		c.MaxOutputTokens = overlay.MaxOutputTokens
	}
	if overlay.ReasoningEffort != "" {
		c.ReasoningEffort = overlay.ReasoningEffort
	}
	if overlay.Verbosity != "" {
		c.Verbosity = overlay.Verbosity
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-5"
	}
	if c.Timeout == "" {
		c.Timeout = "3m"
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 8000
	}
	if c.ReasoningEffort == "" {
		c.ReasoningEffort = "medium"
	}
	if c.Verbosity == "" {
		c.Verbosity = "medium"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxOutputTokens != "" {
		if v := os.Getenv(env.MaxOutputTokens); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				c.MaxOutputTokens = n
			}
		}
	}
	if env.ReasoningEffort != "" {
		if v := os.Getenv(env.ReasoningEffort); v != "" {
			c.ReasoningEffort = v
		}
	}
	if env.Verbosity != "" {
		if v := os.Getenv(env.Verbosity); v != "" {
			c.Verbosity = v
		}
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
