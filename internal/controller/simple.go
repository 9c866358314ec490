package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayDryRun prints the discovered tests as a table plus the coverage
// totals, or the failure reason for non-complete runs.
func (s *SimpleUI) DisplayDryRun(ctx context.Context, result m.DryRunResult, reportPath m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch result.Status {
	case m.DryRunTimeout:
		s.printf("Dry run timed out\n")
		return nil
	case m.DryRunError:
		s.printf("Dry run failed:\n%s\n", strings.TrimSpace(result.ErrorMessage))
		return nil
	case m.DryRunComplete:
	}

	s.printf("\n%s", renderTestTable(result.Tests))

	if result.Coverage != nil {
		s.printf("\nMutant coverage: %d static mutant(s), %d test(s) with per-test coverage\n",
			len(result.Coverage.Static), len(result.Coverage.PerTest))
	}

	if reportPath != "" {
		s.printf("Report written to %s\n", reportPath)
	}

	return nil
}

// DisplayMutantRun prints the verdict for one mutant.
func (s *SimpleUI) DisplayMutantRun(ctx context.Context, result m.MutantRunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch result.Status {
	case m.MutantTimeout:
		s.printf("Mutant timed out\n")
	case m.MutantKilled:
		if len(result.KilledBy) == 0 {
			s.printf("Mutant killed (crash, no parseable failing test)\n")
			break
		}

		s.printf("Mutant killed by:\n")

		for _, name := range result.KilledBy {
			s.printf("  - %s\n", name)
		}
	case m.MutantSurvived:
		s.printf("Mutant survived (%d test(s) ran)\n", result.TestsRan)
	}

	return nil
}

func renderTestTable(tests []m.TestOutcome) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Test", "Status", "Duration"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})

	counts := map[m.TestStatus]int{}

	for _, test := range tests {
		duration := ""
		if test.DurationMS != nil {
			duration = fmt.Sprintf("%.2fms", *test.DurationMS)
		}

		table.Append([]string{test.Name, test.Status.String(), duration})
		counts[test.Status]++
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(tests)),
		fmt.Sprintf("%d passed / %d failed / %d skipped",
			counts[m.TestPassed], counts[m.TestFailed], counts[m.TestSkipped]),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
