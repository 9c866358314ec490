package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hughescr/stryker-bun-runner/internal/domain"
)

var mutantIDFlag string
var mutantTestsFlag []string
var mutantTimeoutFlag time.Duration

// mutantCmd represents the mutant command.
var mutantCmd = newMutantCmd()

func newMutantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutant",
		Short: "Run the covering tests against one active mutant",
		Long: `Execute bun test with the given mutant activated, restricted to the
tests that cover it, bailing at the first failure. Prints whether the
mutant was killed, survived, or timed out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()

			orchestrator, err := newOrchestrator()
			if err != nil {
				return err
			}
			defer orchestrator.Dispose(ctx)

			result := orchestrator.MutantRun(ctx, domain.MutantRunArgs{
				Timeout:      mutantTimeoutFlag,
				ActiveMutant: mutantIDFlag,
				TestNames:    mutantTestsFlag,
			})

			return ui.DisplayMutantRun(ctx, result)
		},
	}

	configureMutantFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutantCmd)
}

func configureMutantFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mutantIDFlag, "id", "", "active mutant identifier (required)")
	cmd.Flags().StringArrayVar(&mutantTestsFlag, "test", nil,
		"test name covering the mutant (can be repeated; empty runs everything)")
	cmd.Flags().DurationVarP(&mutantTimeoutFlag, timeoutFlagName, "t", 0,
		"time budget for the run (0 uses the configured default)")

	cobra.CheckErr(cmd.MarkFlagRequired("id"))
}
