package controller

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

func newCapturedUI() (*SimpleUI, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	return NewSimpleUI(cmd), &out
}

func TestDisplayDryRun_CompleteRendersTableAndCoverage(t *testing.T) {
	ui, out := newCapturedUI()

	duration := 0.25
	result := m.DryRunResult{
		Status: m.DryRunComplete,
		Tests: []m.TestOutcome{
			{Name: "math.test.ts > adds", Status: m.TestPassed, DurationMS: &duration},
			{Name: "math.test.ts > breaks", Status: m.TestFailed},
		},
		Coverage: &m.MutantCoverage{
			PerTest: map[string]map[string]int{"math.test.ts > adds": {"1": 1}},
			Static:  map[string]int{"2": 1, "3": 1},
		},
	}

	require.NoError(t, ui.DisplayDryRun(context.Background(), result, "reports/dry-run-x.yaml"))

	rendered := out.String()
	assert.Contains(t, rendered, "math.test.ts > adds")
	assert.Contains(t, rendered, "0.25ms")
	// tablewriter uppercases footer cells.
	assert.Contains(t, rendered, "1 PASSED / 1 FAILED / 0 SKIPPED")
	assert.Contains(t, rendered, "2 static mutant(s), 1 test(s) with per-test coverage")
	assert.Contains(t, rendered, "Report written to reports/dry-run-x.yaml")
}

func TestDisplayDryRun_TimeoutAndError(t *testing.T) {
	ui, out := newCapturedUI()

	require.NoError(t, ui.DisplayDryRun(context.Background(), m.DryRunResult{Status: m.DryRunTimeout}, ""))
	assert.Contains(t, out.String(), "Dry run timed out")

	out.Reset()

	require.NoError(t, ui.DisplayDryRun(context.Background(), m.DryRunResult{
		Status:       m.DryRunError,
		ErrorMessage: "SyntaxError: nope\n",
	}, ""))
	assert.Contains(t, out.String(), "Dry run failed:\nSyntaxError: nope")
}

func TestDisplayMutantRun_Verdicts(t *testing.T) {
	ui, out := newCapturedUI()

	require.NoError(t, ui.DisplayMutantRun(context.Background(), m.MutantRunResult{
		Status:   m.MutantKilled,
		KilledBy: []string{"adds 1 + 1", "subtracts"},
	}))
	assert.Contains(t, out.String(), "Mutant killed by:")
	assert.Contains(t, out.String(), "  - adds 1 + 1")
	assert.Contains(t, out.String(), "  - subtracts")

	out.Reset()

	require.NoError(t, ui.DisplayMutantRun(context.Background(), m.MutantRunResult{Status: m.MutantKilled}))
	assert.Contains(t, out.String(), "crash, no parseable failing test")

	out.Reset()

	require.NoError(t, ui.DisplayMutantRun(context.Background(), m.MutantRunResult{
		Status:   m.MutantSurvived,
		TestsRan: 4,
	}))
	assert.Contains(t, out.String(), "Mutant survived (4 test(s) ran)")

	out.Reset()

	require.NoError(t, ui.DisplayMutantRun(context.Background(), m.MutantRunResult{Status: m.MutantTimeout}))
	assert.Contains(t, out.String(), "Mutant timed out")
}

func TestDisplay_CancelledContext(t *testing.T) {
	ui, out := newCapturedUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, ui.DisplayDryRun(ctx, m.DryRunResult{Status: m.DryRunComplete}, ""))
	assert.Error(t, ui.DisplayMutantRun(ctx, m.MutantRunResult{Status: m.MutantSurvived}))
	assert.Empty(t, out.String())
}
