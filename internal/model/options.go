package model

import "time"

// RunOptions describes a single invocation of the bun test process.
// Immutable once handed to the process runner.
type RunOptions struct {
	// Executable is the path to the bun binary.
	Executable string

	// Timeout bounds the whole invocation; on expiry the process is
	// force-killed and the outcome reports a nil exit code.
	Timeout time.Duration

	// Args are passthrough CLI arguments appended after the fixed flags.
	Args []string

	// Env is overlaid on the current process environment.
	Env map[string]string

	// ActiveMutant identifies the mutant to activate; empty means none
	// (dry run). Exported to the child via an environment variable.
	ActiveMutant string

	// TestNamePattern filters which tests run; empty means no filter.
	TestNamePattern string

	// Bail stops the run at the first failing test.
	Bail bool

	// PreloadPath is the bootstrap script loaded before any test file.
	PreloadPath Path

	// CoverageFile is where the preload hooks append mutant coverage
	// records; empty disables coverage collection.
	CoverageFile Path

	// InspectPort enables the inspector on the given port when > 0.
	InspectPort int

	// SyncPort is the WebSocket sync server port, exported to the child
	// when > 0.
	SyncPort int

	// Sequential forces single-worker test execution.
	Sequential bool
}
