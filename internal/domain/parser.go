package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// Anchored patterns for bun's console reporter. Anchoring keeps glyphs that
// appear mid-line (log noise, nested output) from being read as test lines.
var (
	fileHeaderPattern = regexp.MustCompile(`^(\S+\.(?:test|spec)\.(?:js|jsx|ts|tsx|mjs|cjs)):$`)
	passLinePattern   = regexp.MustCompile(`^[✓✔] (.+?)( \[(\d+(?:\.\d+)?)ms\])?$`)
	failLinePattern   = regexp.MustCompile(`^[✗✘] (.+?)( \[(\d+(?:\.\d+)?)ms\])?$`)
	bailFailPattern   = regexp.MustCompile(`^\(fail\) (.+?)( \[(\d+(?:\.\d+)?)ms\])?$`)
	skipLinePattern   = regexp.MustCompile(`^[»↓] (.+)$`)

	passCountPattern = regexp.MustCompile(`^\s*(\d+) pass(?:ed)?\s*$`)
	failCountPattern = regexp.MustCompile(`^\s*(\d+) fail(?:ed)?\s*$`)
	skipCountPattern = regexp.MustCompile(`^\s*(\d+) skip(?:ped)?\s*$`)
	ranTestsPattern  = regexp.MustCompile(`^\s*Ran (\d+) tests?(?: across .*)?\s*$`)
	bailedOutPattern = regexp.MustCompile(`^\s*Bailed out after (\d+) failures?\s*$`)
)

// ConsoleOutputParser turns the raw console output of a bun test run into
// per-test outcomes and reconciled counts. It is the primary result source:
// bun has no machine-readable reporter that carries failure diagnostics.
type ConsoleOutputParser struct{}

// NewConsoleOutputParser constructs a ConsoleOutputParser.
func NewConsoleOutputParser() *ConsoleOutputParser {
	return &ConsoleOutputParser{}
}

// Parse scans stdout then stderr in one pass. Each line is stripped of ANSI
// escapes before matching; lines between a failing test line and the next
// recognized line accumulate as that test's failure message.
func (p *ConsoleOutputParser) Parse(stdout, stderr string) m.ParsedRunSummary {
	state := &parseState{pendingFailure: -1}

	for _, line := range strings.Split(stdout+"\n"+stderr, "\n") {
		state.consumeLine(stripansi.Strip(line))
	}

	state.finalizeFailure()
	state.reconcileCounts()

	return state.summary
}

type parseState struct {
	summary m.ParsedRunSummary

	currentFile m.Path

	// pendingFailure indexes the failed test whose diagnostics are still
	// accumulating, -1 when none is open.
	pendingFailure int
	failureLines   []string

	summaryPassed  int
	summaryFailed  int
	summarySkipped int
	bailFailures   int
	ranTests       int
}

func (s *parseState) consumeLine(line string) {
	if match := fileHeaderPattern.FindStringSubmatch(line); match != nil {
		// A new file means the previous test's diagnostics are over.
		s.finalizeFailure()
		s.currentFile = m.Path(match[1])

		return
	}

	if match := passLinePattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.addTest(match[1], m.TestPassed, match[3])

		return
	}

	if match := failLinePattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.addTest(match[1], m.TestFailed, match[3])
		s.pendingFailure = len(s.summary.Tests) - 1

		return
	}

	if match := bailFailPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.addTest(match[1], m.TestFailed, match[3])
		s.pendingFailure = len(s.summary.Tests) - 1

		return
	}

	if match := skipLinePattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.addTest(match[1], m.TestSkipped, "")

		return
	}

	if s.consumeCountLine(line) {
		return
	}

	if s.pendingFailure >= 0 && strings.TrimSpace(line) != "" {
		s.failureLines = append(s.failureLines, line)
	}
}

// consumeCountLine records summary counters. A matched counter line also
// closes any open failure message so the counter never bleeds into it.
func (s *parseState) consumeCountLine(line string) bool {
	if match := passCountPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.summaryPassed = max(s.summaryPassed, atoiOrZero(match[1]))

		return true
	}

	if match := failCountPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.summaryFailed = max(s.summaryFailed, atoiOrZero(match[1]))

		return true
	}

	if match := skipCountPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.summarySkipped = max(s.summarySkipped, atoiOrZero(match[1]))

		return true
	}

	if match := bailedOutPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.bailFailures = max(s.bailFailures, atoiOrZero(match[1]))

		return true
	}

	if match := ranTestsPattern.FindStringSubmatch(line); match != nil {
		s.finalizeFailure()
		s.ranTests = max(s.ranTests, atoiOrZero(match[1]))

		return true
	}

	return false
}

func (s *parseState) addTest(name string, status m.TestStatus, duration string) {
	test := m.TestOutcome{
		Name:       name,
		SourceFile: s.currentFile,
		Status:     status,
	}

	if s.currentFile != "" {
		test.Name = string(s.currentFile) + " > " + name
	}

	if duration != "" {
		if millis, err := strconv.ParseFloat(duration, 64); err == nil {
			test.DurationMS = &millis
		}
	}

	s.summary.Tests = append(s.summary.Tests, test)
}

func (s *parseState) finalizeFailure() {
	if s.pendingFailure < 0 {
		return
	}

	s.summary.Tests[s.pendingFailure].FailureMessage = strings.TrimSpace(strings.Join(s.failureLines, "\n"))
	s.pendingFailure = -1
	s.failureLines = nil
}

// reconcileCounts settles the per-status totals. Explicitly scanned test
// lines and summary counters each act as a floor for the other; truncated
// output (a bail, a crash mid-print) can hide lines but a counter that did
// print is still trustworthy. "Ran N tests" is only consulted when nothing
// else was recognized at all.
func (s *parseState) reconcileCounts() {
	var passed, failed, skipped int

	for _, test := range s.summary.Tests {
		switch test.Status {
		case m.TestPassed:
			passed++
		case m.TestFailed:
			failed++
		case m.TestSkipped:
			skipped++
		}
	}

	s.summary.Passed = max(passed, s.summaryPassed)
	s.summary.Failed = max(failed, s.summaryFailed, s.bailFailures)
	s.summary.Skipped = max(skipped, s.summarySkipped)
	s.summary.Total = s.summary.Passed + s.summary.Failed + s.summary.Skipped

	if s.summary.Total == 0 {
		s.summary.Total = s.ranTests
	}
}

func atoiOrZero(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}

	return n
}
