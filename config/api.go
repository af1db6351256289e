package config

import "fmt"

// APIConfig configures the HTTP API.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a Bearer token on every request.
	Token string `json:"token"`
	// MaxConcurrentRuns bounds the plans computed at the same time.
	MaxConcurrentRuns int `json:"max_concurrent_runs"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxConcurrentRuns == 0 {
		c.MaxConcurrentRuns = 2
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.MaxConcurrentRuns < 0 {
		return fmt.Errorf("max_concurrent_runs must not be negative")
	}
	return nil
}
