package model

// TestStatus represents the outcome of a single test.
type TestStatus int

const (
	// TestPassed indicates the test ran and passed.
	TestPassed TestStatus = iota
	// TestFailed indicates the test ran and failed.
	TestFailed
	// TestSkipped indicates the test was skipped.
	TestSkipped
)

// String returns the lowercase label used in logs and reports.
func (s TestStatus) String() string {
	switch s {
	case TestPassed:
		return "passed"
	case TestFailed:
		return "failed"
	case TestSkipped:
		return "skipped"
	}

	return "unknown"
}

// TestOutcome is one test scanned from the runner's console output.
// It is created while scanning one line, mutated only to attach a trailing
// multi-line failure message, and never mutated afterward.
type TestOutcome struct {
	// Name is hierarchical: "file > describe > test".
	Name string `yaml:"name"`

	// SourceFile is the test file the outcome came from, when a file
	// header line preceded it.
	SourceFile Path `yaml:"sourceFile,omitempty"`

	Status TestStatus `yaml:"status"`

	// DurationMS is nil when the line carried no bracketed suffix.
	DurationMS *float64 `yaml:"durationMs,omitempty"`

	// FailureMessage is the trimmed multi-line text that followed a
	// failed-test line.
	FailureMessage string `yaml:"failureMessage,omitempty"`
}

// ParsedRunSummary is the structured view of one console run.
//
// Count invariant: explicit per-test counts take precedence over
// summary-line counts; summary lines act as a monotonic floor, and the
// "Ran N tests" line is the last-resort total, used only when every other
// counter is zero.
type ParsedRunSummary struct {
	Tests   []TestOutcome `yaml:"tests"`
	Passed  int           `yaml:"passed"`
	Failed  int           `yaml:"failed"`
	Skipped int           `yaml:"skipped"`
	Total   int           `yaml:"total"`
}

// FailedTests returns the outcomes with TestFailed status, in scan order.
func (s ParsedRunSummary) FailedTests() []TestOutcome {
	var failed []TestOutcome

	for _, test := range s.Tests {
		if test.Status == TestFailed {
			failed = append(failed, test)
		}
	}

	return failed
}
