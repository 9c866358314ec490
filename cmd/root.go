// Package cmd provides the root command and CLI setup for bun-runner.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hughescr/stryker-bun-runner/internal/adapter"
	"github.com/hughescr/stryker-bun-runner/internal/controller"
)

var processRunner adapter.ProcessRunner
var coverageStore adapter.CoverageStore
var preloadGenerator adapter.PreloadGenerator
var syncServer adapter.SyncServer
var reportStore adapter.ReportStore
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// logFileFlag overrides the log file location.
var logFileFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	sync := adapter.NewWebSocketSyncServer()
	syncServer = sync
	processRunner = adapter.NewLocalProcessRunner(
		adapter.WithInspectorURLCallback(func(url string) {
			// The inspector is listening; release the child's ready latch.
			slog.Info("Inspector attached", "url", url)
			sync.SignalReady()
		}),
	)
	coverageStore = adapter.NewLocalCoverageStore()
	preloadGenerator = adapter.NewFilePreloadGenerator()
	reportStore = adapter.NewYAMLReportStore()
}

const rootLongDescription = `bun-runner drives a bun test process on behalf of a mutation-testing
engine. A dry run discovers the test suite and its baseline mutant
coverage; a mutant run answers, under a time budget, whether any test
kills one injected mutant.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bun-runner",
		Short: "bun test runner for mutation testing",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for dry-run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log", "", "log file path (defaults to "+defaultLogFilename+")")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
