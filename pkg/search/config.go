package search

import (
	"fmt"
	"os"
)

// Config holds Google Custom Search credentials. The tool is optional:
// when Enabled reports false the streaming proxy simply never invokes it.
type Config struct {
	APIKey   string `toml:"api_key"`
	EngineID string `toml:"engine_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey   string
	EngineID string
}

// Enabled reports whether both credentials are present.
func (c *Config) Enabled() bool {
	return c.APIKey != "" && c.EngineID != ""
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
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.EngineID != "" {
		c.EngineID = overlay.EngineID
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.EngineID != "" {
		if v := os.Getenv(env.EngineID); v != "" {
			c.EngineID = v
		}
	}
}

func (c *Config) validate() error {
	// Partial credentials are a configuration mistake; none at all disables the tool.
	if (c.APIKey == "") != (c.EngineID == "") {
		return fmt.Errorf("api_key and engine_id must be set together")
	}
	return nil
}
