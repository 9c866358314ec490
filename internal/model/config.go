package model

import (
	"fmt"
	"time"
)

// Default configuration values, mirrored by the CLI layer's viper defaults.
const (
	DefaultBunPath    = "bun"
	DefaultRunTimeout = 2 * time.Minute
	DefaultReportsDir = ".bun-runner-reports"
)

// RunnerConfig enumerates every recognized runner option. It is defaulted
// and validated exactly once, at the orchestrator boundary.
type RunnerConfig struct {
	// BunPath is the bun executable to spawn.
	BunPath string

	// Timeout is the default per-invocation budget, overridable per run.
	Timeout time.Duration

	// Args are passthrough arguments for every bun invocation.
	Args []string

	// Env is overlaid on the inherited environment for every invocation.
	Env map[string]string

	// Sequential forces --concurrency=1 on every invocation.
	Sequential bool

	// Inspect arms the inspector on dry runs and waits for an attach URL.
	Inspect bool

	// ReportsDir is where dry-run reports are persisted.
	ReportsDir Path
}

// ApplyDefaults fills the zero-valued fields in place.
func (c *RunnerConfig) ApplyDefaults() {
	if c.BunPath == "" {
		c.BunPath = DefaultBunPath
	}

	if c.Timeout <= 0 {
		c.Timeout = DefaultRunTimeout
	}

	if c.ReportsDir == "" {
		c.ReportsDir = DefaultReportsDir
	}
}

// Validate reports the first configuration problem found.
func (c *RunnerConfig) Validate() error {
	if c.BunPath == "" {
		return fmt.Errorf("bun path must not be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	for key := range c.Env {
		if key == "" {
			return fmt.Errorf("environment overlay contains an empty variable name")
		}
	}

	return nil
}
