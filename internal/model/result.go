package model

import "time"

// DryRunStatus classifies the outcome of a dry run.
type DryRunStatus int

const (
	// DryRunComplete indicates the run finished and produced test outcomes.
	DryRunComplete DryRunStatus = iota
	// DryRunError indicates the run crashed with no usable test evidence.
	DryRunError
	// DryRunTimeout indicates the run was killed by the timeout.
	DryRunTimeout
)

// String returns the lowercase label used in logs and reports.
func (s DryRunStatus) String() string {
	switch s {
	case DryRunComplete:
		return "complete"
	case DryRunError:
		return "error"
	case DryRunTimeout:
		return "timeout"
	}

	return "unknown"
}

// DryRunResult is the answer to a full discovery-and-coverage run.
type DryRunResult struct {
	Status DryRunStatus `yaml:"status"`

	Tests []TestOutcome `yaml:"tests,omitempty"`

	// Coverage is passed through from the collector unchanged; nil when
	// coverage collection was off or produced no valid records.
	Coverage *MutantCoverage `yaml:"coverage,omitempty"`

	// ErrorMessage carries the captured stderr for DryRunError.
	ErrorMessage string `yaml:"errorMessage,omitempty"`
}

// MutantRunStatus classifies the outcome of a single mutant run.
type MutantRunStatus int

const (
	// MutantKilled indicates at least one test detected the mutant, or the
	// run crashed (a crash is still evidence of a kill).
	MutantKilled MutantRunStatus = iota
	// MutantSurvived indicates every executed test passed.
	MutantSurvived
	// MutantTimeout indicates the run was killed by the timeout.
	MutantTimeout
)

// String returns the lowercase label used in logs and reports.
func (s MutantRunStatus) String() string {
	switch s {
	case MutantKilled:
		return "killed"
	case MutantSurvived:
		return "survived"
	case MutantTimeout:
		return "timeout"
	}

	return "unknown"
}

// MutantRunResult is the verdict for one mutant.
type MutantRunResult struct {
	Status MutantRunStatus `yaml:"status"`

	// KilledBy names the failing tests, empty when the kill was inferred
	// from an unparseable crash.
	KilledBy []string `yaml:"killedBy,omitempty"`

	// TestsRan is the number of tests that executed; 1 when a crash left
	// no parseable count.
	TestsRan int `yaml:"testsRan"`
}

// DryRunReport wraps a dry-run result with run metadata for persistence.
type DryRunReport struct {
	RunID     string        `yaml:"runId"`
	CreatedAt time.Time     `yaml:"createdAt"`
	Duration  time.Duration `yaml:"duration"`
	Result    DryRunResult  `yaml:"result"`
}
