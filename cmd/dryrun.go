package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hughescr/stryker-bun-runner/internal/domain"
	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

var dryRunTimeoutFlag time.Duration
var dryRunNoCoverageFlag bool

// dryRunCmd represents the dry-run command.
var dryRunCmd = newDryRunCmd()

func newDryRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dry-run",
		Short: "Run the full suite unmutated to discover tests and coverage",
		Long: `Execute bun test once with no active mutant, parse the console output
into per-test outcomes, and merge the mutant-coverage records the preload
hooks wrote. The report is persisted under the reports directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			orchestrator, err := newOrchestrator()
			if err != nil {
				return err
			}
			defer orchestrator.Dispose(ctx)

			started := time.Now()
			result := orchestrator.DryRun(ctx, domain.DryRunArgs{
				Timeout:      dryRunTimeoutFlag,
				WithCoverage: !dryRunNoCoverageFlag,
			})

			reportPath := saveDryRunReport(ctx, result, time.Since(started))

			return ui.DisplayDryRun(ctx, result, reportPath)
		},
	}

	configureDryRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(dryRunCmd)
}

func configureDryRunFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&dryRunTimeoutFlag, timeoutFlagName, "t", 0,
		"time budget for the run (0 uses the configured default)")
	cmd.Flags().BoolVar(&dryRunNoCoverageFlag, "no-mutant-coverage", false,
		"skip mutant-coverage collection and the sync handshake")
}

func newOrchestrator() (domain.Orchestrator, error) {
	return domain.NewOrchestrator(
		runnerConfigFromViper(),
		processRunner,
		coverageStore,
		preloadGenerator,
		syncServer,
	)
}

// saveDryRunReport persists the result; a persistence failure is logged but
// never fails the command, the verdict already exists.
func saveDryRunReport(ctx context.Context, result m.DryRunResult, duration time.Duration) m.Path {
	report := m.DryRunReport{
		RunID:     time.Now().UTC().Format("20060102-150405"),
		CreatedAt: time.Now().UTC(),
		Duration:  duration,
		Result:    result,
	}

	path, err := reportStore.SaveDryRun(ctx, m.Path(viper.GetString(outputFlagName)), report)
	if err != nil {
		slog.Warn("Failed to persist dry-run report", "error", err)
		return ""
	}

	return path
}
