package domain

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

type mockProcessRunner struct {
	mock.Mock
}

func (r *mockProcessRunner) Run(ctx context.Context, opts m.RunOptions) m.ProcessOutcome {
	args := r.Called(ctx, opts)
	return args.Get(0).(m.ProcessOutcome)
}

type fakeCoverageStore struct {
	records      []m.CoverageLineRecord
	readPaths    []m.Path
	cleanedPaths []m.Path
}

func (s *fakeCoverageStore) ReadRecords(_ context.Context, path m.Path) []m.CoverageLineRecord {
	s.readPaths = append(s.readPaths, path)
	return s.records
}

func (s *fakeCoverageStore) Cleanup(_ context.Context, path m.Path) {
	s.cleanedPaths = append(s.cleanedPaths, path)
}

type fakePreloadGenerator struct {
	path     m.Path
	err      error
	disposed int
}

func (g *fakePreloadGenerator) Materialize(context.Context) (m.Path, error) {
	return g.path, g.err
}

func (g *fakePreloadGenerator) Dispose(context.Context) {
	g.disposed++
}

func exitCode(code int) *int {
	return &code
}

func newTestOrchestrator(t *testing.T, runner *mockProcessRunner, store *fakeCoverageStore) Orchestrator {
	t.Helper()

	orchestrator, err := NewOrchestrator(
		m.RunnerConfig{BunPath: "bun", Timeout: time.Minute},
		runner,
		store,
		&fakePreloadGenerator{path: "/tmp/preload.js"},
		nil,
	)
	require.NoError(t, err)

	return orchestrator
}

func TestNewOrchestrator_RejectsInvalidConfig(t *testing.T) {
	_, err := NewOrchestrator(
		m.RunnerConfig{BunPath: "bun", Timeout: time.Minute, Env: map[string]string{"": "x"}},
		&mockProcessRunner{},
		&fakeCoverageStore{},
		&fakePreloadGenerator{},
		nil,
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid runner config")
}

func TestDryRun_Timeout(t *testing.T) {
	runner := &mockProcessRunner{}
	// Regardless of any exit code the kill signal produced, a timed-out
	// outcome carries none and maps to the timeout status.
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{TimedOut: true})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		DryRun(context.Background(), DryRunArgs{Timeout: 100 * time.Millisecond})

	assert.Equal(t, m.DryRunTimeout, result.Status)
	runner.AssertExpectations(t)
}

func TestDryRun_CrashWithNoTestsIsError(t *testing.T) {
	runner := &mockProcessRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{ExitCode: exitCode(1), Stderr: "SyntaxError: nope"})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		DryRun(context.Background(), DryRunArgs{})

	assert.Equal(t, m.DryRunError, result.Status)
	assert.Contains(t, result.ErrorMessage, "SyntaxError")
}

func TestDryRun_CompleteWithCoverage(t *testing.T) {
	runner := &mockProcessRunner{}

	var captured m.RunOptions

	runner.On("Run", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(m.RunOptions)
		}).
		Return(m.ProcessOutcome{
			ExitCode: exitCode(0),
			Stdout:   "✓ a [0.12ms]\n✓ b [0.30ms]\n 2 pass\n",
		})

	store := &fakeCoverageStore{records: []m.CoverageLineRecord{
		{PerTest: map[string][]string{"a": {"1"}}, Static: []string{"2"}},
	}}

	result := newTestOrchestrator(t, runner, store).
		DryRun(context.Background(), DryRunArgs{WithCoverage: true})

	require.Equal(t, m.DryRunComplete, result.Status)
	require.Len(t, result.Tests, 2)

	// The merged map is the collector's output, untouched.
	require.NotNil(t, result.Coverage)
	assert.Equal(t, map[string]int{"1": 1}, result.Coverage.PerTest["a"])
	assert.Equal(t, map[string]int{"2": 1}, result.Coverage.Static)

	// The side-channel file was read then deleted.
	require.Len(t, store.readPaths, 1)
	assert.Equal(t, store.readPaths, store.cleanedPaths)

	// The invocation had coverage wired and no active mutant.
	assert.NotEmpty(t, captured.CoverageFile)
	assert.Empty(t, captured.ActiveMutant)
	assert.Equal(t, m.Path("/tmp/preload.js"), captured.PreloadPath)
	assert.False(t, captured.Bail)
}

func TestDryRun_NoCoverageLeavesResultCoverageNil(t *testing.T) {
	runner := &mockProcessRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{ExitCode: exitCode(0), Stdout: "✓ a\n"})

	store := &fakeCoverageStore{}

	result := newTestOrchestrator(t, runner, store).
		DryRun(context.Background(), DryRunArgs{WithCoverage: false})

	require.Equal(t, m.DryRunComplete, result.Status)
	assert.Nil(t, result.Coverage)
	assert.Empty(t, store.readPaths)
}

func TestMutantRun_KilledByFailingTest(t *testing.T) {
	runner := &mockProcessRunner{}

	var captured m.RunOptions

	runner.On("Run", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(m.RunOptions)
		}).
		Return(m.ProcessOutcome{
			ExitCode: exitCode(1),
			Stdout:   "✗ adds 1 + 1 [0.05ms]\nerror: expected 2, got 3\n 1 fail\n",
		})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		MutantRun(context.Background(), MutantRunArgs{
			ActiveMutant: "42",
			TestNames:    []string{"adds 1 + 1"},
		})

	assert.Equal(t, m.MutantKilled, result.Status)
	assert.Equal(t, []string{"adds 1 + 1"}, result.KilledBy)
	assert.Equal(t, 1, result.TestsRan)

	// Mutant runs bail at the first failure and carry the mutant id.
	assert.True(t, captured.Bail)
	assert.Equal(t, "42", captured.ActiveMutant)
	assert.Empty(t, captured.CoverageFile)

	// The filter must match the literal name despite the metacharacter.
	compiled := regexp.MustCompile(captured.TestNamePattern)
	assert.True(t, compiled.MatchString("adds 1 + 1"))
	assert.False(t, compiled.MatchString("adds 1 X 1"))
}

func TestMutantRun_CrashWithoutParseableFailureIsKilled(t *testing.T) {
	runner := &mockProcessRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{Stderr: "segfault"})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		MutantRun(context.Background(), MutantRunArgs{ActiveMutant: "7"})

	assert.Equal(t, m.MutantKilled, result.Status)
	assert.Empty(t, result.KilledBy)
	assert.Equal(t, 1, result.TestsRan)
}

func TestMutantRun_Survived(t *testing.T) {
	runner := &mockProcessRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{
			ExitCode: exitCode(0),
			Stdout:   "✓ a [0.10ms]\n✓ b [0.20ms]\n 2 pass\n",
		})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		MutantRun(context.Background(), MutantRunArgs{ActiveMutant: "7"})

	assert.Equal(t, m.MutantSurvived, result.Status)
	assert.Equal(t, 2, result.TestsRan)
}

func TestMutantRun_Timeout(t *testing.T) {
	runner := &mockProcessRunner{}
	runner.On("Run", mock.Anything, mock.Anything).
		Return(m.ProcessOutcome{TimedOut: true})

	result := newTestOrchestrator(t, runner, &fakeCoverageStore{}).
		MutantRun(context.Background(), MutantRunArgs{ActiveMutant: "7"})

	assert.Equal(t, m.MutantTimeout, result.Status)
}

func TestDispose_IsIdempotentWithoutARun(t *testing.T) {
	preload := &fakePreloadGenerator{path: "/tmp/preload.js"}

	orchestrator, err := NewOrchestrator(
		m.RunnerConfig{BunPath: "bun", Timeout: time.Minute},
		&mockProcessRunner{},
		&fakeCoverageStore{},
		preload,
		nil,
	)
	require.NoError(t, err)

	orchestrator.Dispose(context.Background())
	orchestrator.Dispose(context.Background())

	assert.Equal(t, 2, preload.disposed)
}
