package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hughescr/stryker-bun-runner/internal/adapter"
	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// DryRunArgs parameterizes a discovery-and-coverage run.
type DryRunArgs struct {
	// Timeout overrides the configured default when positive.
	Timeout time.Duration

	// WithCoverage enables the coverage side channel and the sync server.
	WithCoverage bool
}

// MutantRunArgs parameterizes a single mutant verdict run.
type MutantRunArgs struct {
	// Timeout overrides the configured default when positive.
	Timeout time.Duration

	// ActiveMutant is the mutant id to activate in the child process.
	ActiveMutant string

	// TestNames lists the tests covering the mutant; only they run.
	TestNames []string
}

// Orchestrator composes the process runner, console parser, coverage
// collection, and sync server into the two operations the host framework
// calls. No failure mode surfaces as an error: every outcome is encoded in
// the returned result's status.
type Orchestrator interface {
	DryRun(ctx context.Context, args DryRunArgs) m.DryRunResult
	MutantRun(ctx context.Context, args MutantRunArgs) m.MutantRunResult
	Dispose(ctx context.Context)
}

type orchestrator struct {
	config     m.RunnerConfig
	runner     adapter.ProcessRunner
	parser     *ConsoleOutputParser
	coverage   adapter.CoverageStore
	preload    adapter.PreloadGenerator
	syncServer adapter.SyncServer

	// mu serializes invocations: one child process in flight per instance.
	mu sync.Mutex

	// lastCoverageFile is whatever Dispose may still need to delete.
	lastCoverageFile m.Path
}

// NewOrchestrator validates the configuration once and wires the adapters
// together. The sync server may be nil, which disables the handshake.
func NewOrchestrator(
	config m.RunnerConfig,
	runner adapter.ProcessRunner,
	coverage adapter.CoverageStore,
	preload adapter.PreloadGenerator,
	syncServer adapter.SyncServer,
) (Orchestrator, error) {
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}

	return &orchestrator{
		config:     config,
		runner:     runner,
		parser:     NewConsoleOutputParser(),
		coverage:   coverage,
		preload:    preload,
		syncServer: syncServer,
	}, nil
}

// DryRun executes the full unmutated suite, discovering tests and, when
// requested, the baseline mutant coverage.
func (o *orchestrator) DryRun(ctx context.Context, args DryRunArgs) m.DryRunResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	runID := uuid.NewString()
	slog.Info("Starting dry run", "runId", runID, "coverage", args.WithCoverage)

	opts, err := o.baseRunOptions(ctx, args.Timeout)
	if err != nil {
		return m.DryRunResult{Status: m.DryRunError, ErrorMessage: err.Error()}
	}

	if args.WithCoverage {
		opts.CoverageFile = m.Path(filepath.Join(os.TempDir(), "stryker-bun-coverage-"+runID+".json"))
		o.lastCoverageFile = opts.CoverageFile

		if o.syncServer != nil {
			if startErr := o.syncServer.Start(ctx, 0); startErr != nil {
				slog.Warn("Sync server failed to start, proceeding without it", "error", startErr)
			} else {
				opts.SyncPort = o.syncServer.Port()
				defer o.syncServer.Close()

				if o.config.Inspect {
					if port, portErr := adapter.FreePort(); portErr == nil {
						opts.InspectPort = port
					} else {
						slog.Warn("No inspector port available", "error", portErr)
					}
				}

				// Without an inspector there is nothing to wait for, so
				// the ready latch is released before the child connects.
				if opts.InspectPort == 0 {
					o.syncServer.SignalReady()
				}
			}
		}
	}

	start := time.Now()
	outcome := o.runner.Run(ctx, opts)
	slog.Info("Dry run process finished",
		"runId", runID, "duration", time.Since(start), "timedOut", outcome.TimedOut)

	if outcome.TimedOut {
		return m.DryRunResult{Status: m.DryRunTimeout}
	}

	summary := o.parser.Parse(outcome.Stdout, outcome.Stderr)

	if !outcome.ExitedZero() && len(summary.Tests) == 0 {
		slog.Error("Dry run crashed with no test evidence", "runId", runID)
		return m.DryRunResult{Status: m.DryRunError, ErrorMessage: outcome.Stderr}
	}

	result := m.DryRunResult{
		Status: m.DryRunComplete,
		Tests:  summary.Tests,
	}

	if opts.CoverageFile != "" {
		records := o.coverage.ReadRecords(ctx, opts.CoverageFile)
		// The merged map is handed through unchanged; no key renaming or
		// re-derivation happens at this level.
		result.Coverage = MergeCoverageRecords(records)
		o.coverage.Cleanup(ctx, opts.CoverageFile)
		o.lastCoverageFile = ""
	}

	return result
}

// MutantRun executes the filtered suite with one mutant active, stopping at
// the first failure. One counter-example is all a verdict needs.
func (o *orchestrator) MutantRun(ctx context.Context, args MutantRunArgs) m.MutantRunResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	slog.Info("Starting mutant run", "mutant", args.ActiveMutant, "tests", len(args.TestNames))

	opts, err := o.baseRunOptions(ctx, args.Timeout)
	if err != nil {
		// An unrunnable setup cannot distinguish the mutant; treat it the
		// same as an unparseable crash.
		slog.Error("Mutant run setup failed", "mutant", args.ActiveMutant, "error", err)
		return m.MutantRunResult{Status: m.MutantKilled, TestsRan: 1}
	}

	opts.ActiveMutant = args.ActiveMutant
	opts.Bail = true
	opts.TestNamePattern = BuildTestNamePattern(args.TestNames)

	outcome := o.runner.Run(ctx, opts)

	if outcome.TimedOut {
		slog.Info("Mutant run timed out", "mutant", args.ActiveMutant)
		return m.MutantRunResult{Status: m.MutantTimeout}
	}

	summary := o.parser.Parse(outcome.Stdout, outcome.Stderr)

	if failed := summary.FailedTests(); len(failed) > 0 {
		killedBy := make([]string, 0, len(failed))
		for _, test := range failed {
			killedBy = append(killedBy, test.Name)
		}

		slog.Info("Mutant killed", "mutant", args.ActiveMutant, "killedBy", killedBy)

		return m.MutantRunResult{
			Status:   m.MutantKilled,
			KilledBy: killedBy,
			TestsRan: summary.Total,
		}
	}

	if !outcome.ExitedZero() {
		// The process crashed before printing a parseable failure. That
		// is still evidence of a kill; the count of tests that ran is
		// unknown, so fall back to 1.
		slog.Info("Mutant killed by unparseable crash", "mutant", args.ActiveMutant)
		return m.MutantRunResult{Status: m.MutantKilled, TestsRan: 1}
	}

	slog.Info("Mutant survived", "mutant", args.ActiveMutant, "testsRan", summary.Total)

	return m.MutantRunResult{Status: m.MutantSurvived, TestsRan: summary.Total}
}

// Dispose cleans up the generated preload script and any leftover coverage
// file. Idempotent; never fails, even without a prior run.
func (o *orchestrator) Dispose(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.preload.Dispose(ctx)

	if o.lastCoverageFile != "" {
		o.coverage.Cleanup(ctx, o.lastCoverageFile)
		o.lastCoverageFile = ""
	}

	if o.syncServer != nil {
		o.syncServer.Close()
	}
}

func (o *orchestrator) baseRunOptions(ctx context.Context, timeout time.Duration) (m.RunOptions, error) {
	preloadPath, err := o.preload.Materialize(ctx)
	if err != nil {
		return m.RunOptions{}, fmt.Errorf("failed to materialize preload script: %w", err)
	}

	if timeout <= 0 {
		timeout = o.config.Timeout
	}

	return m.RunOptions{
		Executable:  o.config.BunPath,
		Timeout:     timeout,
		Args:        o.config.Args,
		Env:         o.config.Env,
		PreloadPath: preloadPath,
		Sequential:  o.config.Sequential,
	}, nil
}
