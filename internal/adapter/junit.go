package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// JUnitParser extracts test outcomes from a JUnit XML report, for runner
// setups configured with bun's junit reporter instead of console scraping.
// It is a plain attribute-extraction pass; the console parser remains the
// primary source of truth.
type JUnitParser interface {
	ParseFile(ctx context.Context, path m.Path) (m.ParsedRunSummary, error)
	Parse(content []byte) (m.ParsedRunSummary, error)
}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	File      string        `xml:"file,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure"`
	Skipped   *struct{}     `xml:"skipped"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// XMLJUnitParser implements JUnitParser with encoding/xml.
type XMLJUnitParser struct{}

// NewXMLJUnitParser constructs an XMLJUnitParser.
func NewXMLJUnitParser() *XMLJUnitParser {
	return &XMLJUnitParser{}
}

// ParseFile implements JUnitParser.
func (p *XMLJUnitParser) ParseFile(ctx context.Context, path m.Path) (m.ParsedRunSummary, error) {
	if err := ctx.Err(); err != nil {
		return m.ParsedRunSummary{}, err
	}

	content, err := os.ReadFile(string(path))
	if err != nil {
		return m.ParsedRunSummary{}, fmt.Errorf("failed to read junit report: %w", err)
	}

	return p.Parse(content)
}

// Parse implements JUnitParser.
func (p *XMLJUnitParser) Parse(content []byte) (m.ParsedRunSummary, error) {
	var suites junitTestSuites
	if err := xml.Unmarshal(content, &suites); err != nil {
		return m.ParsedRunSummary{}, fmt.Errorf("failed to decode junit report: %w", err)
	}

	var summary m.ParsedRunSummary

	for _, suite := range suites.Suites {
		for _, testCase := range suite.Cases {
			summary.Tests = append(summary.Tests, toTestOutcome(suite, testCase))
		}
	}

	for _, test := range summary.Tests {
		switch test.Status {
		case m.TestPassed:
			summary.Passed++
		case m.TestFailed:
			summary.Failed++
		case m.TestSkipped:
			summary.Skipped++
		}
	}

	// Per-case outcomes win; suite attributes only fill in when no cases
	// were listed at all.
	if len(summary.Tests) == 0 {
		for _, suite := range suites.Suites {
			summary.Failed += suite.Failures
			summary.Skipped += suite.Skipped
			summary.Passed += suite.Tests - suite.Failures - suite.Skipped
		}
	}

	summary.Total = summary.Passed + summary.Failed + summary.Skipped

	return summary, nil
}

func toTestOutcome(suite junitTestSuite, testCase junitTestCase) m.TestOutcome {
	outcome := m.TestOutcome{
		Name:       junitTestName(suite, testCase),
		SourceFile: m.Path(testCase.File),
		Status:     m.TestPassed,
	}

	if seconds, err := strconv.ParseFloat(testCase.Time, 64); err == nil {
		millis := seconds * 1000
		outcome.DurationMS = &millis
	}

	switch {
	case testCase.Failure != nil:
		outcome.Status = m.TestFailed
		outcome.FailureMessage = strings.TrimSpace(firstNonEmpty(testCase.Failure.Body, testCase.Failure.Message))
	case testCase.Skipped != nil:
		outcome.Status = m.TestSkipped
	}

	return outcome
}

func junitTestName(suite junitTestSuite, testCase junitTestCase) string {
	parts := make([]string, 0, 3)

	for _, part := range []string{suite.Name, testCase.ClassName, testCase.Name} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, " > ")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return ""
}
